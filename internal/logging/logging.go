package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup configures the process-wide default logger and returns it. The level
// string is parsed case-insensitively ("debug", "info", "warn", "error");
// anything unrecognized falls back to info.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
	return logger
}
