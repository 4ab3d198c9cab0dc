package commands

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// RunLs opens the shrine at path and prints, one per line, every leaf whose
// path matches pattern (unanchored regex; empty pattern matches everything),
// in lexicographic order, with mode/authorship/timestamp columns.
func RunLs(out io.Writer, in io.Reader, logger *slog.Logger, path, flagPassword, pattern string) error {
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

	for _, key := range open.Keys() {
		if !re.MatchString(key) {
			continue
		}
		secret, err := open.Get(key)
		if err != nil {
			return err
		}
		updatedBy := "-"
		if secret.UpdatedBy != nil {
			updatedBy = *secret.UpdatedBy
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n",
			key, secret.Mode, secret.CreatedBy, updatedBy, secret.CreatedAt.Format(timeLayout))
	}

	logger.Debug("listed keys", slog.String("pattern", pattern))
	return nil
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = ".*"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &domain.ErrInvalidPattern{Pattern: pattern, Err: err}
	}
	return re, nil
}
