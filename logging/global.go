// Package logging provides structured logging for the instructions API:
// a global slog-based service writing to console and a weekly log file,
// plus an HTTP request-logging middleware.
package logging

import (
	"log/slog"
	"os"
)

// LoggingService wraps the configured slog logger.
type LoggingService struct {
	Logger *slog.Logger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance.
func InitLogger(logDir, level string, retentionWeeks int) {
	DefaultLoggingService = &LoggingService{
		Logger: SetupLogger(logDir, level, retentionWeeks),
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

// active returns the configured logger, or a console fallback when the
// service was never initialized (early startup, tests).
func active(level slog.Level) *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Package-level functions for direct access

func Debug(msg string, args ...any) {
	active(slog.LevelDebug).Debug(msg, args...)
}

func Info(msg string, args ...any) {
	active(slog.LevelInfo).Info(msg, args...)
}

func Warn(msg string, args ...any) {
	active(slog.LevelWarn).Warn(msg, args...)
}

func Error(msg string, args ...any) {
	active(slog.LevelError).Error(msg, args...)
}
