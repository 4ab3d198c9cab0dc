package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/allisson/shrine/internal/shrine"
	"github.com/allisson/shrine/internal/shrine/domain"
	"github.com/allisson/shrine/internal/shrine/gitutil"
)

// RunInit creates a new Closed shrine at path, writing it to disk and
// optionally initializing a git repository around it. With strongPassword,
// a freshly-typed or --password-flagged master password is additionally run
// through the PasswordStrength rule.
func RunInit(
	out io.Writer,
	in io.Reader,
	logger *slog.Logger,
	path string,
	flagPassword string,
	encryptionName string,
	serializationName string,
	useGit bool,
	force bool,
	strongPassword bool,
) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return &domain.ErrFileAlreadyExists{Path: path}
		}
	}

	encryption, err := parseEncryption(encryptionName)
	if err != nil {
		return err
	}
	serialization, err := parseSerialization(serializationName)
	if err != nil {
		return err
	}

	var password *domain.Password
	if encryption != 0 { // AlgorithmPlain == 0
		pw := flagPassword
		if pw == "" {
			pw, err = readPassword(out, in, "Password: ")
			if err != nil {
				return err
			}
		}
		if strongPassword {
			if err := validatePasswordStrength(pw); err != nil {
				return err
			}
		}
		p := domain.NewPassword(pw)
		password = &p
	}

	closed, err := shrine.New(encryption, serialization, password)
	if err != nil {
		return err
	}
	if err := closed.WriteTo(path); err != nil {
		return err
	}

	logger.Info("shrine initialized",
		slog.String("path", path),
		slog.String("uuid", closed.UUID().String()),
		slog.String("encryption", encryptionName),
		slog.String("serialization", serializationName),
	)

	if useGit {
		dir, err := gitutil.AbsDir(path)
		if err != nil {
			return err
		}
		name, email := gitutil.Signature()
		if err := gitutil.CommitShrine(dir, shrineFilename, "Initialize shrine", name, email); err != nil {
			logger.Warn("git commit failed", slog.Any("error", err))
		}
	}

	return nil
}
