// Package logger provides centralized logger construction with
// configurable level and output format (text or JSON). Two flavors are
// exposed: a *slog.Logger for general application logging and a
// charmbracelet logger for the interactive fetch and serve paths.
package logger

import (
	"io"
	"log/slog"
	"os"

	charm "github.com/charmbracelet/log"
)

// New creates a *slog.Logger configured with the given level and format.
// Level: "debug", "info", "warn", "error" (default: "info").
// Format: "json" or "text" (default: "text").
// Output goes to stderr.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter creates a *slog.Logger writing to w.
// Useful for testing or redirecting output.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewCharm creates a charmbracelet logger writing to stderr, honoring
// the same level and format strings as New.
func NewCharm(level, format string) *charm.Logger {
	return NewCharmWithWriter(os.Stderr, level, format)
}

// NewCharmWithWriter creates a charmbracelet logger writing to w.
func NewCharmWithWriter(w io.Writer, level, format string) *charm.Logger {
	l := charm.NewWithOptions(w, charm.Options{
		Level:           ParseCharmLevel(level),
		ReportTimestamp: true,
	})
	if format == "json" {
		l.SetFormatter(charm.JSONFormatter)
	}
	return l
}

// ParseLevel converts a level string to slog.Level.
// Recognized values: "debug", "warn", "error". Everything else returns LevelInfo.
func ParseLevel(level string) slog.Level {
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

// ParseCharmLevel converts a level string to a charmbracelet level,
// with the same defaulting as ParseLevel.
func ParseCharmLevel(level string) charm.Level {
	switch level {
	case "debug":
		return charm.DebugLevel
	case "warn":
		return charm.WarnLevel
	case "error":
		return charm.ErrorLevel
	default:
		return charm.InfoLevel
	}
}
