package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// RunDump opens the shrine at path and prints key=value pairs (base64 for
// Binary-mode secrets) for every leaf matching pattern. With private,
// dumps the private map instead of the tree.
func RunDump(out io.Writer, in io.Reader, logger *slog.Logger, path, flagPassword, pattern string, private bool) error {
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

	re, err := compilePattern(pattern)
	if err != nil {
		return err
	}

	var keys []string
	if private {
		keys = open.Holder().KeysPrivate()
	} else {
		keys = open.Keys()
	}

	for _, key := range keys {
		if !re.MatchString(key) {
			continue
		}

		var secret *domain.Secret
		if private {
			secret, err = open.Holder().GetPrivate(key)
		} else {
			secret, err = open.Get(key)
		}
		if err != nil {
			return err
		}

		value := secret.Value.String()
		if secret.Mode == domain.ModeBinary {
			value = secret.Value.Base64()
		}
		fmt.Fprintf(out, "%s=%s\n", key, value)
	}

	logger.Debug("dumped keys", slog.String("pattern", pattern), slog.Bool("private", private))
	return nil
}
