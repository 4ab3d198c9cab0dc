package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/allisson/shrine/internal/shrine/authorship"
	"github.com/allisson/shrine/internal/shrine/domain"
)

// RunConfigSet opens the shrine at path and sets a private entry (surface
// key `.KEY`), writing the shrine back.
func RunConfigSet(out io.Writer, in io.Reader, logger *slog.Logger, path, flagPassword, key, value string) error {
	privateKey, err := privateKey(key)
	if err != nil {
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

	now := time.Now().UTC()
	secret := domain.NewSecret(domain.SecretBytesFromString(value), domain.ModeText, authorship.Current(), now)
	open.Holder().SetPrivate(privateKey, secret)

	reclosed, err := open.Close()
	if err != nil {
		return err
	}
	if err := reclosed.WriteTo(path); err != nil {
		return err
	}

	logger.Info("config set", slog.String("key", key))
	return nil
}

// RunConfigGet opens the shrine at path and prints the private entry's
// value to out.
func RunConfigGet(out io.Writer, in io.Reader, logger *slog.Logger, path, flagPassword, key string) error {
	privateKey, err := privateKey(key)
	if err != nil {
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

	secret, err := open.Holder().GetPrivate(privateKey)
	if err != nil {
		return err
	}

	logger.Debug("config read", slog.String("key", key))
	fmt.Fprintln(out, secret.Value.String())
	return nil
}

// privateKey strips the leading "." the CLI surface requires for private
// entries, returning an error if it's missing.
func privateKey(key string) (string, error) {
	if !strings.HasPrefix(key, ".") {
		return "", &domain.ErrInvalidFormat{Reason: "config key `" + key + "` must start with `.`"}
	}
	return strings.TrimPrefix(key, "."), nil
}
