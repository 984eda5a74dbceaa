// internal/logger/logger.go
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger writes JSON lines to stdout at level ("debug", "info",
// "warn", "error"; anything else is info).
func NewJSONLogger(level string) *slog.Logger {
	return New(os.Stdout, level)
}

func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
