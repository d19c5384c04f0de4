// Package logging writes structured logs to a rotating file. The TUI owns
// the terminal, so nothing is ever logged to stdout or stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a slog.Logger backed by a rotating file.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New opens a logger that appends to path. Level is read from $TCM_LOG_LEVEL
// (debug, info, warn, error), info by default.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return newLogger(file, file, levelFromEnv()), nil
}

// NewWriter logs to w. Used by tests.
func NewWriter(w io.Writer, level slog.Level) *Logger {
	return newLogger(w, nil, level)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

func newLogger(w io.Writer, closer io.Closer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{Logger: slog.New(handler), closer: closer}
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func levelFromEnv() slog.Level {
	return ParseLevel(os.Getenv("TCM_LOG_LEVEL"))
}

// ParseLevel maps a level name to a slog.Level, info when unknown.
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
