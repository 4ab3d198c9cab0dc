package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// RunInfo prints the shrine's metadata. With field set, prints only that
// field's value (for scripting); otherwise prints all fields.
func RunInfo(out io.Writer, logger *slog.Logger, path, field string) error {
	closed, err := openClosed(path)
	if err != nil {
		return err
	}

	version := 1
	if closed.IsLegacy() {
		version = 0
	}

	fields := map[string]string{
		"version":       fmt.Sprintf("%d", version),
		"uuid":          closed.UUID().String(),
		"serialization": closed.Serialization().String(),
		"encryption":    closed.Encryption().String(),
	}

	if field != "" {
		value, ok := fields[field]
		if !ok {
			return &domain.ErrInvalidFormat{Reason: "unknown info field `" + field + "`"}
		}
		fmt.Fprintln(out, value)
		return nil
	}

	fmt.Fprintf(out, "version: %s\n", fields["version"])
	fmt.Fprintf(out, "uuid: %s\n", fields["uuid"])
	fmt.Fprintf(out, "serialization: %s\n", fields["serialization"])
	fmt.Fprintf(out, "encryption: %s\n", fields["encryption"])

	logger.Debug("info printed", slog.String("path", path))
	return nil
}
