// Package commands contains CLI command implementations for the shrine
// application, kept separate from cmd/shrine's cli.Command wiring: each
// Run* function below takes an io.Writer/io.Reader and a logger, never a
// *cli.Command, so it is unit-testable without a process boundary.
package commands

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	jellyvalidation "github.com/jellydator/validation"
	"golang.org/x/term"

	"github.com/allisson/shrine/internal/config"
	"github.com/allisson/shrine/internal/shrine"
	"github.com/allisson/shrine/internal/shrine/crypto"
	"github.com/allisson/shrine/internal/shrine/domain"
	"github.com/allisson/shrine/internal/shrine/gitutil"
	"github.com/allisson/shrine/internal/shrine/serialize"
	appvalidation "github.com/allisson/shrine/internal/validation"
)

// validateKey rejects blank or whitespace-padded keys before they ever
// reach the holder.
func validateKey(key string) error {
	if err := jellyvalidation.Validate(key, jellyvalidation.Required, appvalidation.NotBlank, appvalidation.NoWhitespace); err != nil {
		return &domain.ErrEmptyKey{Parent: key}
	}
	return nil
}

// validatePasswordStrength applies the PasswordStrength rule to a shrine's
// master password when --strong-password opts in.
func validatePasswordStrength(pw string) error {
	err := jellyvalidation.Validate(pw,
		jellyvalidation.Required,
		jellyvalidation.Length(8, 128),
		appvalidation.PasswordStrength{
			MinLength:      8,
			RequireUpper:   true,
			RequireLower:   true,
			RequireNumber:  true,
			RequireSpecial: true,
		},
	)
	return appvalidation.WrapValidationError(err)
}

// shrineFilename is the fixed filename within a shrine directory.
const shrineFilename = "shrine"

// ShrinePath joins dir with the fixed shrine filename.
func ShrinePath(dir string) string {
	return filepath.Join(dir, shrineFilename)
}

// readPassword prompts on out and reads a password from in without echo
// when in is a terminal, falling back to a plain line read otherwise (for
// scripted/test use).
func readPassword(out io.Writer, in io.Reader, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readStdinValue reads a single value from in when a command's VALUE
// argument is omitted (e.g. `set KEY` piping the secret on stdin).
func readStdinValue(in io.Reader) (string, error) {
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", &domain.ErrReadStdIn{Err: err}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// openClosed loads the closed shrine at path, mapping a missing file to the
// typed FileNotFound error.
func openClosed(path string) (*shrine.ClosedShrine, error) {
	return shrine.TryFromPath(path)
}

// resolvePassword returns the password to open closed with: the explicit
// flag value if set, then a matching entry in the cached-passwords file
// ($XDG_CONFIG_HOME/shrine/passwords), and finally (for AES shrines) an
// interactive prompt. Plain shrines never prompt.
func resolvePassword(logger *slog.Logger, closed *shrine.ClosedShrine, flagPassword string, out io.Writer, in io.Reader) (*domain.Password, error) {
	if closed.Encryption() != crypto.AlgorithmAES {
		return nil, nil
	}
	if flagPassword != "" {
		p := domain.NewPassword(flagPassword)
		return &p, nil
	}
	if p, ok := passwordFromFile(logger, closed.UUID()); ok {
		return p, nil
	}
	pw, err := readPassword(out, in, "Password: ")
	if err != nil {
		return nil, err
	}
	p := domain.NewPassword(pw)
	return &p, nil
}

// passwordFromFile consults the optional cached-passwords file for an
// entry matching id. A file with the wrong mode is ignored with a warning,
// never read.
func passwordFromFile(logger *slog.Logger, id uuid.UUID) (*domain.Password, bool) {
	cfg := config.Load()
	entries, err := config.CachedPasswords(cfg.XDGConfigHome)
	if err != nil {
		logger.Warn("passwords file ignored", slog.Any("error", err))
		return nil, false
	}
	pw, ok := entries[id.String()]
	if !ok {
		return nil, false
	}
	p := domain.NewPassword(pw)
	return &p, true
}

// commitIfEnabled stages and commits path with go-git when the shrine's
// private `.git.enabled` flag is "true"; `.git.commit.auto` additionally
// gates it, defaulting to enabled when unset.
func commitIfEnabled(open *shrine.OpenShrine, path, message string) error {
	enabled, err := open.Holder().GetPrivate("git.enabled")
	if err != nil || enabled.Value.String() != "true" {
		return nil
	}
	if autoCommit, err := open.Holder().GetPrivate("git.commit.auto"); err == nil && autoCommit.Value.String() == "false" {
		return nil
	}

	dir, err := gitutil.AbsDir(path)
	if err != nil {
		return fmt.Errorf("git: %w", err)
	}
	name, email := gitutil.Signature()
	return gitutil.CommitShrine(dir, shrineFilename, message, name, email)
}

func parseSerialization(name string) (serialize.Format, error) {
	return serialize.ParseFormat(name)
}

func parseEncryption(name string) (crypto.Algorithm, error) {
	switch name {
	case "aes":
		return crypto.AlgorithmAES, nil
	case "none", "clear", "plain":
		return crypto.AlgorithmPlain, nil
	default:
		return 0, &domain.ErrInvalidFormat{Reason: "unknown encryption `" + name + "`"}
	}
}
