// Package logger provides slog construction and shared logging attributes.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Scope returns the attribute identifying the component a log line came from.
// Scopes are dot-separated, e.g. "relationships.registry".
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns the standard error attribute.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// NewLogger builds the process logger from the environment.
//
// LOG_LEVEL selects the minimum level (debug|info|warn|warning|error,
// case-insensitive, defaulting to info). GO_ENV=production switches the
// handler to JSON for log aggregation; anything else logs as text.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "info":
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
