package commands

import (
	"io"
	"log/slog"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// RunConvert re-keys the shrine at path: it opens with the current
// password, switches to the requested encryption/password, and writes the
// result back in the current (non-legacy) format. Converting never commits
// through the git collaborator even when `.git.enabled` is set, since a
// re-keyed shrine is a deliberate, operator-driven change the collaborator
// should not fold into its regular "Update shrine" history silently.
func RunConvert(out io.Writer, in io.Reader, logger *slog.Logger, path, flagPassword, newPasswordFlag, newEncryptionName string, strongPassword bool) error {
	closed, err := openClosed(path)
	if err != nil {
		return err
	}
	password, err := resolvePassword(logger, closed, flagPassword, out, in)
	if err != nil {
		return err
	}
	open, err := closed.Open(password)
	if err != nil {
		return err
	}
	defer open.Scrub()

	newEncryption, err := parseEncryption(newEncryptionName)
	if err != nil {
		return err
	}

	switch newEncryption {
	case 0: // AlgorithmPlain
		open.IntoClear()
	default:
		newPassword := newPasswordFlag
		if newPassword == "" {
			newPassword, err = readPassword(out, in, "New password: ")
			if err != nil {
				return err
			}
		}
		if strongPassword {
			if err := validatePasswordStrength(newPassword); err != nil {
				return err
			}
		}
		p := domain.NewPassword(newPassword)
		open.IntoAES(&p)
	}

	reclosed, err := open.Close()
	if err != nil {
		return err
	}
	if err := reclosed.WriteTo(path); err != nil {
		return err
	}

	logger.Info("shrine converted",
		slog.String("uuid", reclosed.UUID().String()),
		slog.String("encryption", newEncryptionName),
	)
	return nil
}
