// Package shrinelog builds the single *slog.Logger shared by every command
// and by the agent server. Core packages (internal/shrine/...) never log;
// only cmd/shrine and the agent server (internal/shrine/agent) take a
// logger by constructor injection.
package shrinelog

import (
	"io"
	"log/slog"
)

// New builds a JSON-handler logger at the given level, writing to w. The
// agent daemon passes its log file here; CLI commands pass os.Stderr so
// stdout stays reserved for command output (secret values, JSON dumps).
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
