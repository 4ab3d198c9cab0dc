package commands

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/allisson/shrine/internal/shrine/authorship"
	"github.com/allisson/shrine/internal/shrine/domain"
)

// RunImport opens the shrine at path, parses file as dotenv via
// godotenv.Parse, and sets each entry as a Text secret under prefix, then
// writes the shrine back.
func RunImport(out io.Writer, in io.Reader, logger *slog.Logger, path, flagPassword, file, prefix string) error {
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

	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.ErrFileNotFound{Path: file}
		}
		return &domain.ErrIO{Path: file, Write: false, Err: err}
	}
	defer f.Close()

	entries, err := godotenv.Parse(f)
	if err != nil {
		return &domain.ErrInvalidDotEnv{Reason: err.Error()}
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now().UTC()
	author := authorship.Current()
	for _, k := range keys {
		secret := domain.NewSecret(domain.SecretBytesFromString(entries[k]), domain.ModeText, author, now)
		if err := open.Set(prefix+k, secret); err != nil {
			return err
		}
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

	logger.Info("dotenv imported", slog.String("file", file), slog.Int("count", len(keys)))
	return nil
}
