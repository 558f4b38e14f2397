// Package logx builds the process logger from the verbosity flags.
package logx

import (
	"io"
	"log/slog"
)

// Level maps the quiet flag and the verbose count to a log level.
func Level(verbose int, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose > 0:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w. Two or more -v also report source locations.
func New(w io.Writer, verbose int, quiet bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     Level(verbose, quiet),
		AddSource: verbose > 1 && !quiet,
	}

	return slog.New(slog.NewTextHandler(w, opts)).With("app", "urlsort")
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
