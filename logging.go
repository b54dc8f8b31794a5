package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// newLogger builds a text slog.Logger writing to the configured file. The
// TUI owns the terminal, so nothing is ever logged to stdout.
func newLogger(cfg Config) (*slog.Logger, func()) {
	var out io.Writer = io.Discard
	closer := func() {}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err == nil {
			out = file
			closer = func() { _ = file.Close() }
		}
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: levelFromString(cfg.LogLevel),
	})
	return slog.New(handler), closer
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
