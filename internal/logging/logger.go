// Package logging provides the structured logger shared by the server, the seed command and the services.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"hotel/internal/config"
)

// Logger wraps slog.Logger with the service's default attributes.
// Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to stdout.
// Format "json" selects the JSON handler, anything else the text handler.
func New(cfg config.LoggingConfig, env string) *Logger {
	return NewWithWriter(os.Stdout, cfg, env)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, env string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "hotel"),
		slog.String("env", env),
	})

	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel converts a string log level to slog.Level.
// Unrecognised values fall back to info.
func ParseLevel(level string) slog.Level {
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

// With returns a new Logger with additional default attributes.
//
//	roomLog := logger.With("component", "rooms")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
