package main

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

// newLogger builds the logger selected by the -log-level and -log-format
// flags. It does not set the global logger.
func newLogger(levelStr, formatStr string, outW io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, errors.Errorf("unknown log level %q", levelStr)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	switch formatStr {
	case "json":
		return slog.New(slog.NewJSONHandler(outW, handlerOpts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(outW, handlerOpts)), nil
	}
	return nil, errors.Errorf("unknown log format %q", formatStr)
}
