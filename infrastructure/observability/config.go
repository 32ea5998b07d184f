// Package observability installs the OpenTelemetry trace pipeline used by
// the upstream client and tool execution.
package observability

import (
	"io"
	"time"
)

// Config configures tracing.
type Config struct {
	// ServiceName is the name of the service for telemetry.
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Environment is the deployment environment (e.g., "production", "staging").
	Environment string

	// Exporter specifies the trace exporter type.
	Exporter ExporterType

	// Endpoint is the OTLP endpoint (e.g., "localhost:4317").
	Endpoint string

	// Insecure disables TLS for the exporter connection.
	Insecure bool

	// SampleRate is the sampling rate (0.0-1.0, default: 1.0).
	SampleRate float64

	// BatchTimeout is the batch export timeout.
	BatchTimeout time.Duration

	// MaxExportBatchSize is the maximum batch size.
	MaxExportBatchSize int

	// Writer receives stdout exporter output. Defaults to os.Stderr, since
	// stdout carries the stdio transport.
	Writer io.Writer
}

// ExporterType specifies the telemetry exporter.
type ExporterType string

const (
	// ExporterOTLP exports to an OTLP gRPC endpoint.
	ExporterOTLP ExporterType = "otlp"

	// ExporterStdout writes spans as JSON (useful for development).
	ExporterStdout ExporterType = "stdout"

	// ExporterNoop disables export.
	ExporterNoop ExporterType = "noop"
)

// ParseExporter parses an exporter name. Empty means noop.
func ParseExporter(s string) (ExporterType, bool) {
	switch ExporterType(s) {
	case ExporterOTLP, ExporterStdout, ExporterNoop:
		return ExporterType(s), true
	case "":
		return ExporterNoop, true
	default:
		return "", false
	}
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:        "aiera-mcp",
		ServiceVersion:     "dev",
		Environment:        "development",
		Exporter:           ExporterNoop,
		SampleRate:         1.0,
		BatchTimeout:       5 * time.Second,
		MaxExportBatchSize: 512,
	}
}

// Option configures tracing.
type Option func(*Config)

// WithServiceName sets the service name.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithServiceVersion sets the service version.
func WithServiceVersion(version string) Option {
	return func(c *Config) {
		c.ServiceVersion = version
	}
}

// WithEnvironment sets the environment.
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithOTLP exports spans to the given OTLP gRPC endpoint.
func WithOTLP(endpoint string, insecure bool) Option {
	return func(c *Config) {
		c.Exporter = ExporterOTLP
		c.Endpoint = endpoint
		c.Insecure = insecure
	}
}

// WithStdout writes spans to w.
func WithStdout(w io.Writer) Option {
	return func(c *Config) {
		c.Exporter = ExporterStdout
		c.Writer = w
	}
}

// WithSampleRate sets the trace sampling rate.
func WithSampleRate(rate float64) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}
