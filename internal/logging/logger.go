// Package logging builds the zerolog logger shared by the scanner, the
// cleanup dispatcher and the maintenance tasks.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel names the environment variable that overrides the log level.
const EnvLevel = "MAC_SYSCLEAN_LOG_LEVEL"

// Config holds logging configuration.
type Config struct {
	Level      zerolog.Level
	Output     io.Writer
	TimeFormat string
	NoColor    bool
}

// DefaultConfig keeps the console quiet: only warnings and errors reach
// stderr unless --debug is given.
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.WarnLevel,
		Output:     os.Stderr,
		TimeFormat: time.Kitchen,
	}
}

// New creates a console logger with the given configuration.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	w := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: cfg.TimeFormat,
		NoColor:    cfg.NoColor,
	}
	return zerolog.New(w).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// ConfigFromEnv returns DefaultConfig adjusted for the debug flag and the
// MAC_SYSCLEAN_LOG_LEVEL variable (trace, debug, info, warn, error).
func ConfigFromEnv(debug bool) Config {
	cfg := DefaultConfig()
	if debug {
		cfg.Level = zerolog.DebugLevel
	}
	if level := os.Getenv(EnvLevel); level != "" {
		if parsed, ok := ParseLevel(level); ok {
			cfg.Level = parsed
		}
	}
	return cfg
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(name string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	}
	return zerolog.NoLevel, false
}

// FromContext extracts the logger from context.
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// Component returns a child logger tagged with a component field.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
