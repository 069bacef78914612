// Package logger wraps a process-wide log/slog logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger *slog.Logger
	savedLogger   *slog.Logger
	level         = new(slog.LevelVar)
	once          sync.Once
	disabledMux   sync.Mutex
)

// Initialize sets up the structured logger. LOG_LEVEL overrides the default
// info level.
func Initialize() {
	once.Do(func() {
		if env := os.Getenv("LOG_LEVEL"); env != "" {
			SetLevel(env)
		}
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     level,
			AddSource: false,
		})
		defaultLogger = slog.New(handler)
	})
}

// Get returns the default structured logger
func Get() *slog.Logger {
	Initialize()
	disabledMux.Lock()
	defer disabledMux.Unlock()
	return defaultLogger
}

// SetLevel sets the minimum level from a name (debug, info, warn, error).
// Unknown names leave the level unchanged.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}
}

// Disable discards all output until Enable is called. Used while a full-screen
// terminal UI owns stdout/stderr.
func Disable() {
	Initialize()
	disabledMux.Lock()
	defer disabledMux.Unlock()
	if savedLogger != nil {
		return
	}
	savedLogger = defaultLogger
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Enable restores the logger replaced by Disable
func Enable() {
	disabledMux.Lock()
	defer disabledMux.Unlock()
	if savedLogger == nil {
		return
	}
	defaultLogger = savedLogger
	savedLogger = nil
}

// Info logs an info level message
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// InfoContext logs an info level message with context
func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().InfoContext(ctx, msg, args...)
}

// Warn logs a warning level message
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// WarnContext logs a warning level message with context
func WarnContext(ctx context.Context, msg string, args ...any) {
	Get().WarnContext(ctx, msg, args...)
}

// Error logs an error level message
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// ErrorContext logs an error level message with context
func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().ErrorContext(ctx, msg, args...)
}

// Debug logs a debug level message
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// DebugContext logs a debug level message with context
func DebugContext(ctx context.Context, msg string, args ...any) {
	Get().DebugContext(ctx, msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}
