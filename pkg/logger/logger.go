package logger

import (
	"log/slog"
	"strings"
)

// New builds a logger for the named level using the given handler
// constructor (NewCloudRunHandler in production, NewTestHandler in tests).
func New(level string, handler func(level slog.Level) slog.Handler) *slog.Logger {
	h := handler(ParseLevel(level))
	return slog.New(h).With("service", "moneylog")
}

// ParseLevel maps LOGLEVEL values onto slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
