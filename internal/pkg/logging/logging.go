// Package logging configures the process-wide slog default logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default logger for one of the service binaries. The
// service name is baked into every line so the api, watcher, and
// compensator can share a log stream. level is one of "debug", "info",
// "warn", "error" (default "info"); format is "json" or "text" (default
// "json").
func Setup(service, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler).With("service", service))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
