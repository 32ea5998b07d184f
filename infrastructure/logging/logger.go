// Package logging provides structured logging using bolt.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/aiera-inc/aiera-mcp/domain/config"
)

var (
	defaultLogger *bolt.Logger
	once          sync.Once
)

// Config configures the logger.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format is json or console.
	Format string

	// Output defaults to stderr; stdout carries the stdio transport.
	Output io.Writer
}

// DefaultConfig returns console logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: os.Stderr,
	}
}

// FromSettings builds the logger configuration from the logging section
// of the server configuration.
func FromSettings(s config.LoggingConfig) Config {
	cfg := DefaultConfig()
	if s.Level != "" {
		cfg.Level = s.Level
	}
	if s.Format != "" {
		cfg.Format = s.Format
	}
	return cfg
}

// parseLevel converts a level name to bolt.Level. Names are
// case-insensitive so LOG_LEVEL=DEBUG works.
func parseLevel(s string) bolt.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return bolt.TRACE
	case "debug":
		return bolt.DEBUG
	case "warn", "warning":
		return bolt.WARN
	case "error":
		return bolt.ERROR
	default:
		return bolt.INFO
	}
}

func newLogger(cfg Config) *bolt.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var handler bolt.Handler
	if cfg.Format == "json" {
		handler = bolt.NewJSONHandler(output)
	} else {
		handler = bolt.NewConsoleHandler(output)
	}
	return bolt.New(handler).SetLevel(parseLevel(cfg.Level))
}

// Init sets up the default logger. Only the first call has an effect.
func Init(cfg Config) {
	once.Do(func() {
		defaultLogger = newLogger(cfg)
	})
}

// Get returns the default logger, initializing it with DefaultConfig if
// Init was never called.
func Get() *bolt.Logger {
	Init(DefaultConfig())
	return defaultLogger
}

// LogEvent wraps a bolt.Event so Fields can be chained.
type LogEvent struct {
	event *bolt.Event
}

// Add applies a field to the event and returns the wrapper for chaining.
func (l *LogEvent) Add(f Field) *LogEvent {
	l.event = f(l.event)
	return l
}

// Msg sends the log event with a message.
func (l *LogEvent) Msg(msg string) {
	l.event.Msg(msg)
}

// Debug starts a debug level event.
func Debug() *LogEvent {
	return &LogEvent{event: Get().Debug()}
}

// Info starts an info level event.
func Info() *LogEvent {
	return &LogEvent{event: Get().Info()}
}

// Warn starts a warn level event.
func Warn() *LogEvent {
	return &LogEvent{event: Get().Warn()}
}

// Error starts an error level event.
func Error() *LogEvent {
	return &LogEvent{event: Get().Error()}
}
