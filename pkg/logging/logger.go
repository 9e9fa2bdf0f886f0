// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger. Unknown levels fall back to info.
func Setup(cfg Config) zerolog.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger

	return logger
}

// ParseLevel converts a LogLevel to a zerolog.Level.
func ParseLevel(level LogLevel) (zerolog.Level, error) {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// FromContext returns the request-scoped logger stored in ctx, or the global
// logger when there is none.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (hit/miss, key, TTL, shared flights)
//   - Upstream requests (url, status, duration)
//   - Extraction hops
//
// Info: Normal operation events
//   - Served requests
//   - Store selection (memory or redis)
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Cache store errors (response still served)
//   - Rejected requests (4xx)
//   - Upstream failures
//
// Error: Error conditions requiring attention
//   - Responses with status 5xx
//   - Server failures
//   - Configuration errors
//
// Context Fields:
//   - component: Emitting package (cache, upstream, api, server)
//   - request_id: X-Request-ID of the inbound request
//   - method, path: Inbound request line
//   - status: Response status code
//   - duration: Request or upstream call duration
//   - key: Cache key
//   - url: Upstream URL
//   - error_class: Upstream error classification (client, server, status, network, body)
