package commands

import (
	"io"
	"log/slog"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// RunRm opens the shrine at path, removes key, and writes it back. Fails
// with *domain.ErrKeyNotFound if key does not name an existing leaf.
func RunRm(out io.Writer, in io.Reader, logger *slog.Logger, path, flagPassword, key string) error {
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

	if !open.Remove(key) {
		return &domain.ErrKeyNotFound{Key: key}
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

	logger.Info("secret removed", slog.String("key", key))
	return nil
}
