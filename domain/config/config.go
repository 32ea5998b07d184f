// Package config provides the server configuration model.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Transport names accepted by the server.
const (
	TransportStdio          = "stdio"
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
)

// Config is the complete server configuration.
type Config struct {
	// Aiera configures the upstream API.
	Aiera AieraConfig `json:"aiera" yaml:"aiera"`
	// HTTP configures the upstream connection pool.
	HTTP HTTPConfig `json:"http" yaml:"http"`
	// Server configures the MCP host.
	Server ServerConfig `json:"server" yaml:"server"`
	// Tools selects which tools are exposed.
	Tools ToolsConfig `json:"tools,omitempty" yaml:"tools,omitempty"`
	// Correction tunes parameter correction.
	Correction CorrectionConfig `json:"correction" yaml:"correction"`
	// Vocabulary configures where vocabularies come from.
	Vocabulary VocabularyConfig `json:"vocabulary,omitempty" yaml:"vocabulary,omitempty"`
	// Resilience configures tool execution and upstream protection.
	Resilience ResilienceConfig `json:"resilience" yaml:"resilience"`
	// Cache configures the response cache for read-only tools.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// Logging configures the logger.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	// Tracing configures span export.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// AieraConfig configures the upstream API.
type AieraConfig struct {
	// BaseURL is the API root; endpoint paths are appended to it.
	BaseURL string `json:"base_url" yaml:"base_url" validate:"required,url" jsonschema:"description=Aiera API root"`
	// APIKey authenticates requests. Usually supplied via AIERA_API_KEY.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" jsonschema:"description=API key sent as X-API-Key"`
	// DefaultPageSize is used when a tool call omits page_size.
	DefaultPageSize int `json:"default_page_size" yaml:"default_page_size" validate:"min=1,ltefield=MaxPageSize"`
	// MaxPageSize bounds page_size.
	MaxPageSize int `json:"max_page_size" yaml:"max_page_size" validate:"min=1,max=1000"`
}

// HTTPConfig configures the upstream connection pool.
type HTTPConfig struct {
	// Timeout bounds a single upstream request.
	Timeout Duration `json:"timeout" yaml:"timeout" validate:"gt=0"`
	// MaxKeepaliveConnections is the idle pool size.
	MaxKeepaliveConnections int `json:"max_keepalive_connections" yaml:"max_keepalive_connections" validate:"min=0"`
	// MaxConnections caps connections per host.
	MaxConnections int `json:"max_connections" yaml:"max_connections" validate:"min=1"`
	// KeepaliveExpiry closes idle connections after this long.
	KeepaliveExpiry Duration `json:"keepalive_expiry" yaml:"keepalive_expiry" validate:"min=0"`
}

// ServerConfig configures the MCP host.
type ServerConfig struct {
	// Transport is one of stdio, sse or streamable-http.
	Transport string `json:"transport" yaml:"transport" validate:"oneof=stdio sse streamable-http" jsonschema:"enum=stdio,enum=sse,enum=streamable-http"`
	// Addr is the listen address for HTTP transports.
	Addr string `json:"addr" yaml:"addr" validate:"required_unless=Transport stdio"`
	// RequestTimeout bounds one tool call.
	RequestTimeout Duration `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty" validate:"min=0"`
}

// ToolsConfig selects which tools are exposed. Include and Exclude are
// mutually exclusive.
type ToolsConfig struct {
	// Include lists tool or group names to expose; empty means all.
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	// Exclude lists tool or group names to hide.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// CorrectionConfig tunes parameter correction.
type CorrectionConfig struct {
	// AutoCorrectThreshold is the similarity required to replace a value.
	AutoCorrectThreshold float64 `json:"auto_correct_threshold" yaml:"auto_correct_threshold" validate:"gte=0,lte=1"`
	// SuggestThreshold is the similarity required to suggest a value.
	SuggestThreshold float64 `json:"suggest_threshold" yaml:"suggest_threshold" validate:"gte=0,lte=1"`
	// MaxSuggestions bounds suggestion lists.
	MaxSuggestions int `json:"max_suggestions" yaml:"max_suggestions" validate:"min=1,max=50"`
	// StrictFreeText rejects unknown categories and keywords.
	StrictFreeText bool `json:"strict_free_text,omitempty" yaml:"strict_free_text,omitempty"`
}

// VocabularyConfig configures vocabulary sources.
type VocabularyConfig struct {
	// File is a YAML or JSON vocabulary file.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	// Watch reloads File when it changes.
	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty"`
	// Upstream loads categories and keywords from the API.
	Upstream bool `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	// RefreshInterval re-runs all sources periodically; zero disables.
	RefreshInterval Duration `json:"refresh_interval,omitempty" yaml:"refresh_interval,omitempty" validate:"min=0"`
	// Redis reads vocabularies from redis sets.
	Redis RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// RedisConfig configures a redis connection.
type RedisConfig struct {
	// Addr enables redis when set.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
	// Password authenticates the connection.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	// DB selects the database.
	DB int `json:"db,omitempty" yaml:"db,omitempty" validate:"min=0"`
	// KeyPrefix namespaces keys.
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
}

// Enabled returns true if an address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// ResilienceConfig contains resilience settings.
type ResilienceConfig struct {
	// Timeout is the default tool timeout.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"min=0"`
	// MaxConcurrent bounds concurrent tool calls.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty" validate:"min=0"`
	// Retry configures retry of idempotent upstream requests.
	Retry RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
	// CircuitBreaker configures the upstream circuit breaker.
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
	// RateLimit bounds upstream requests per second; zero disables.
	RateLimit RateLimitConfig `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty" validate:"min=0,max=10"`
	// InitialDelay is the first retry delay.
	InitialDelay Duration `json:"initial_delay,omitempty" yaml:"initial_delay,omitempty" validate:"min=0"`
	// Multiplier is the backoff multiplier.
	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty" validate:"omitempty,gte=1"`
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// Threshold is consecutive failures before opening.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty" validate:"min=0"`
	// Timeout is how long the circuit stays open.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"min=0"`
}

// RateLimitConfig configures upstream rate limiting.
type RateLimitConfig struct {
	// Rate is requests per second.
	Rate int `json:"rate,omitempty" yaml:"rate,omitempty" validate:"min=0"`
	// Burst is the bucket capacity.
	Burst int `json:"burst,omitempty" yaml:"burst,omitempty" validate:"min=0"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Enabled turns on caching of read-only tool results.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Backend is memory or redis.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty" validate:"omitempty,oneof=memory redis"`
	// TTL is how long entries live.
	TTL Duration `json:"ttl,omitempty" yaml:"ttl,omitempty" validate:"min=0"`
	// MaxEntries bounds the memory backend.
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty" validate:"min=0"`
	// Redis configures the redis backend.
	Redis RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `json:"level" yaml:"level" validate:"oneof=trace debug info warn warning error"`
	// Format is json or console.
	Format string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=json console"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	// Exporter is noop, stdout or otlp.
	Exporter string `json:"exporter,omitempty" yaml:"exporter,omitempty" validate:"omitempty,oneof=noop stdout otlp"`
	// Endpoint is the OTLP gRPC endpoint.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"required_if=Exporter otlp"`
	// Insecure disables TLS to the endpoint.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	// SampleRate is the fraction of traces kept.
	SampleRate float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty" validate:"gte=0,lte=1"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Aiera: AieraConfig{
			BaseURL:         "https://premium.aiera.com/api",
			DefaultPageSize: 50,
			MaxPageSize:     100,
		},
		HTTP: HTTPConfig{
			Timeout:                 Duration(30 * time.Second),
			MaxKeepaliveConnections: 10,
			MaxConnections:          20,
			KeepaliveExpiry:         Duration(30 * time.Second),
		},
		Server: ServerConfig{
			Transport:      TransportStreamableHTTP,
			Addr:           ":8000",
			RequestTimeout: Duration(60 * time.Second),
		},
		Correction: CorrectionConfig{
			AutoCorrectThreshold: 0.85,
			SuggestThreshold:     0.6,
			MaxSuggestions:       5,
		},
		Resilience: ResilienceConfig{
			Timeout:       Duration(60 * time.Second),
			MaxConcurrent: 16,
			Retry: RetryConfig{
				MaxAttempts:  3,
				InitialDelay: Duration(200 * time.Millisecond),
				Multiplier:   2,
			},
			CircuitBreaker: CircuitBreakerConfig{
				Threshold: 5,
				Timeout:   Duration(30 * time.Second),
			},
		},
		Cache: CacheConfig{
			Backend:    "memory",
			TTL:        Duration(5 * time.Minute),
			MaxEntries: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:   "noop",
			SampleRate: 1.0,
		},
	}
}

// NormalizeTransport maps a transport name to one of the accepted values.
// Unknown names fall back to streamable-http and report false.
func NormalizeTransport(s string) (string, bool) {
	switch t := strings.ToLower(strings.TrimSpace(s)); t {
	case TransportStdio, TransportSSE, TransportStreamableHTTP:
		return t, true
	case "http", "streamable_http", "streamablehttp":
		return TransportStreamableHTTP, true
	default:
		return TransportStreamableHTTP, false
	}
}

// Duration is a time.Duration that supports JSON/YAML string representation.
// Bare numbers are read as seconds.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = dur
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = dur
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ParseDuration parses a Go duration string or a number of seconds.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return Duration(secs * float64(time.Second)), nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return Duration(dur), nil
}
