package logger

import (
	"log/slog"
	"os"
)

var Log = slog.Default()

// Init replaces the default logger with a JSON handler. Debug level is only
// enabled outside release mode.
func Init() {
	level := slog.LevelDebug
	if os.Getenv("GIN_MODE") == "release" {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler)
}
