package internal

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLogLevel converts a level name ("debug", "info", "warn"/"warning",
// "error", case-insensitive) to a slog.Level. Unrecognized values default
// to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", level)
		return slog.LevelInfo
	}
}

// SetupLogger installs a text slog handler on stderr at the given level.
// Stdout stays free for artifact paths and ledger listings.
func SetupLogger(level string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: ParseLogLevel(level)})))
}
