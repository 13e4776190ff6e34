// Package logger configures the process-wide slog logger. Output defaults to
// stderr because stdout is reserved for report lines.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

func Setup(w io.Writer, level string, format string) {
	if w == nil {
		w = os.Stderr
	}
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func WithComponent(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

// ValidLevel reports whether level is one Setup understands.
func ValidLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %q", level)
}

// ValidFormat reports whether format is one Setup understands.
func ValidFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("unknown log format %q", format)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
