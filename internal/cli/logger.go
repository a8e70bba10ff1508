package cli

import (
	"io"
	"log/slog"
	"strings"
)

// setupLogger は設定に応じた slog.Logger を作り、既定のロガーにも設定します。
func setupLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var log *slog.Logger
	switch strings.ToLower(format) {
	case "json":
		log = slog.New(slog.NewJSONHandler(w, opts))
	default:
		log = slog.New(slog.NewTextHandler(w, opts))
	}

	slog.SetDefault(log)
	return log
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
