package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// weekKey returns the ISO week key (YYYY-Www) used to name log files.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
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

// SetupLogger configures slog to log to both console (text) and a
// weekly log file (JSON). Log files older than the retention period are
// removed at setup time. On any file-system failure the logger degrades
// to console only.
func SetupLogger(logDir, level string, retentionWeeks int) *slog.Logger {
	lvl := ParseLevel(level)
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})

	if err := os.MkdirAll(logDir, 0755); err != nil {
		consoleLogger := slog.New(consoleHandler)
		consoleLogger.Error("Failed to create logs directory, console only", "error", err)
		return consoleLogger
	}

	cleanupOldLogs(logDir, retentionWeeks)

	logPath := filepath.Join(logDir, fmt.Sprintf("app-%s.log", weekKey(time.Now())))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		consoleLogger := slog.New(consoleHandler)
		consoleLogger.Error("Failed to open log file, console only", "path", logPath, "error", err)
		return consoleLogger
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: lvl})
	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}})
}

// cleanupOldLogs removes app-*.log files older than the retention
// period.
func cleanupOldLogs(logDir string, retentionWeeks int) {
	if retentionWeeks <= 0 {
		return
	}
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-time.Duration(retentionWeeks) * 7 * 24 * time.Hour)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(logDir, name))
		}
	}
}

// multiHandler fans one record out to several slog handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: out}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: out}
}
