// Package logging configures the process-wide slog logger. Console
// output uses a human-readable text handler; the optional log file gets
// JSON records and size-based rotation.
package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the logging configuration
type Config struct {
	Level      slog.Level
	FilePath   string // Empty disables file output
	MaxSize    int64  // MB
	MaxBackups int
	Console    bool
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		FilePath:   "",
		MaxSize:    100,
		MaxBackups: 5,
		Console:    true,
	}
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger with the given configuration. With both
// console and file enabled the two handlers receive every record.
func NewLogger(config Config) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: config.Level}

	var handlers []slog.Handler

	if config.Console {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, opts))
	}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, err
		}

		fileWriter, err := NewRotatingFileWriter(
			config.FilePath,
			config.MaxSize*1024*1024,
			config.MaxBackups,
		)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(fileWriter, opts))
	}

	if len(handlers) == 0 {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, opts))
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]), nil
	}
	return slog.New(newFanoutHandler(handlers...)), nil
}

// SetDefault creates and sets a default logger with the given configuration
func SetDefault(config Config) error {
	logger, err := NewLogger(config)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// fanoutHandler duplicates records to every wrapped handler
type fanoutHandler struct {
	handlers []slog.Handler
}

func newFanoutHandler(handlers ...slog.Handler) *fanoutHandler {
	return &fanoutHandler{handlers: handlers}
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, hh := range h.handlers {
		if !hh.Enabled(ctx, record.Level) {
			continue
		}
		if err := hh.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		wrapped[i] = hh.WithAttrs(attrs)
	}
	return newFanoutHandler(wrapped...)
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	wrapped := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		wrapped[i] = hh.WithGroup(name)
	}
	return newFanoutHandler(wrapped...)
}
