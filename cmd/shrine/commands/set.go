package commands

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/shrine/internal/shrine/authorship"
	"github.com/allisson/shrine/internal/shrine/domain"
)

// RunSet opens the shrine at path, sets key to value (reading it from in
// when value is empty), closes, and writes it back, optionally committing
// through the git collaborator.
func RunSet(out io.Writer, in io.Reader, logger *slog.Logger, path, flagPassword, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

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

	if value == "" {
		value, err = readStdinValue(in)
		if err != nil {
			return err
		}
	}

	existing, getErr := open.Get(key)
	now := time.Now().UTC()
	author := authorship.Current()
	var notFound *domain.ErrKeyNotFound
	switch {
	case getErr == nil:
		existing.Update(domain.SecretBytesFromString(value), domain.ModeText, author, now)
	case errors.As(getErr, &notFound):
		secret := domain.NewSecret(domain.SecretBytesFromString(value), domain.ModeText, author, now)
		if err := open.Set(key, secret); err != nil {
			return err
		}
	default:
		return getErr
	}

	reclosed, err := open.Close()
	if err != nil {
		return err
	}
	if err := reclosed.WriteTo(path); err != nil {
		return err
	}

	if err := commitIfEnabled(open, path, "Update shrine"); err != nil {
		logger.Warn("git commit failed", slog.Any("error", err))
	}

	logger.Info("secret set", slog.String("key", key))
	return nil
}
