// Package logging builds the process-wide slog logger.
//
// Production emits JSON at Info, everything else emits text at Debug. When a
// log file is configured the same records are teed into a lumberjack-rotated
// file next to stdout.
package logging

import (
	"io"
	"log/slog"
	"os"

	"pixelgate/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns the logger and installs it as slog's default.
func New(cfg config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 7,
			MaxAge:     14, // days
			Compress:   true,
		})
	}

	logger := slog.New(newHandler(cfg, out))
	slog.SetDefault(logger)
	return logger
}

func newHandler(cfg config.Config, out io.Writer) slog.Handler {
	if cfg.IsProduction() {
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Discard is a logger for tests and tools that do not care about output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
