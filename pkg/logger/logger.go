package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log discards output until Init runs, so packages can log from tests without setup.
var Log = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Init installs the JSON stdout logger at the named level ("debug", "info", "warn", "error").
// Unknown levels fall back to info.
func Init(level string) {
	InitTo(os.Stdout, level)
}

// InitTo is Init writing to w; command line tools log to stderr to keep stdout for results.
func InitTo(w io.Writer, level string) {
	Log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
	slog.SetDefault(Log)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
