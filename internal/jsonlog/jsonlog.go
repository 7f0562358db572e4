// Package jsonlog configures the process-wide slog logger the way
// goclaw's cmd package wires --log-level: text on a terminal, JSON
// everywhere else, with an explicit override for either.
package jsonlog

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options controls handler selection. Zero value yields info-level
// logging to stderr in "auto" format: text on a terminal, JSON otherwise.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json|auto
	Output io.Writer
}

// Setup builds a slog.Logger from Options and installs it as the
// package-level default via slog.SetDefault.
func Setup(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := parseLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{Level: level}

	format := opts.Format
	if format == "" {
		format = "auto"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(out, handlerOpts)
	case "text":
		handler = slog.NewTextHandler(out, handlerOpts)
	default: // auto
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			handler = slog.NewTextHandler(out, handlerOpts)
		} else {
			handler = slog.NewJSONHandler(out, handlerOpts)
		}
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
