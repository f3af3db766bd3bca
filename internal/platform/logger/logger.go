// Package logger provides structured logging for the application using the
// standard library log/slog package.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup initializes the application's logging: a structured JSON logger at
// the configured level, writing to out (stderr when out is nil), installed
// as the process default so call sites can use slog.Info and friends
// directly. An unknown level falls back to info with a warning rather than
// failing startup.
func Setup(level string, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stderr
	}

	parsed, ok := parseLevel(level)
	if !ok {
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", level,
			"default_level", "info")
		parsed = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parsed})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithRunLog returns a logger that duplicates records to the process stream
// and a per-run log file. The file is owned by the run directory; the caller
// closes it when the run ends.
func WithRunLog(base io.Writer, path string, level string) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open run log %s: %w", path, err)
	}

	parsed, ok := parseLevel(level)
	if !ok {
		parsed = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(io.MultiWriter(base, f), &slog.HandlerOptions{Level: parsed})
	return slog.New(handler), f, nil
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
