package app

import (
	"io"
	"log/slog"
)

// newLogger builds the App's isolated slog.Logger from its configuration.
// The global default logger is left untouched so concurrent App instances
// (as in tests) never share handlers.
func newLogger(config *Config, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if config.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
