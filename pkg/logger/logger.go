package logger

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Log is the global logger instance
var Log = slog.Default()

// Setup initializes the global logger based on the environment. The level
// comes from LOG_LEVEL (debug, info, warn, error).
func Setup(env string) {
	SetupWithLevel(env, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupWithLevel is Setup with an explicit level. Production writes JSON
// to stdout; everything else gets colored output on stderr.
func SetupWithLevel(env string, level slog.Level) {
	var handler slog.Handler

	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  env == "development",
		})
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Info logs an info message
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}
