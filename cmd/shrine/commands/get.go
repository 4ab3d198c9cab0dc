package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mattn/go-isatty"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// RunGet opens the shrine at path, reads key, and writes its value to out
// encoded per the --encoding rule: Binary mode writes raw bytes unless out
// is a terminal (then base64); Text mode always writes raw bytes; `raw`/
// `base64` override the auto-detection.
func RunGet(out io.Writer, in io.Reader, logger *slog.Logger, path, flagPassword, key, encoding string) error {
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

	secret, err := open.Get(key)
	if err != nil {
		return err
	}

	useBase64 := false
	switch encoding {
	case "base64":
		useBase64 = true
	case "raw":
		useBase64 = false
	default: // "auto" or unset
		if secret.Mode == domain.ModeBinary {
			if f, ok := out.(interface{ Fd() uintptr }); ok {
				useBase64 = isatty.IsTerminal(f.Fd())
			}
		}
	}

	logger.Debug("secret read", slog.String("key", key))

	if useBase64 {
		fmt.Fprintln(out, secret.Value.Base64())
		return nil
	}
	_, err = out.Write(secret.Value.Bytes())
	return err
}
