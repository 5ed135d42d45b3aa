package filearray

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with filearray-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogOpen logs the outcome of an open/create operation.
func (l *Logger) LogOpen(path string, length int, err error) {
	if err != nil {
		l.Error("open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Debug("array mapped",
			"path", path,
			"length", length,
		)
	}
}

// LogFlush logs the outcome of a flush operation.
func (l *Logger) LogFlush(path string, err error) {
	if err != nil {
		l.Error("flush failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Debug("flush completed",
			"path", path,
		)
	}
}

// LogClose logs the outcome of a close operation.
func (l *Logger) LogClose(path string, err error) {
	if err != nil {
		l.Warn("close failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Debug("array closed",
			"path", path,
		)
	}
}
