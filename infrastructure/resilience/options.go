package resilience

import (
	"time"

	"github.com/aiera-inc/aiera-mcp/domain/cache"
	"github.com/aiera-inc/aiera-mcp/domain/config"
	"github.com/aiera-inc/aiera-mcp/infrastructure/telemetry"
)

// Option configures the executor.
type Option func(*ExecutorConfig)

// WithMaxConcurrent sets the maximum concurrent executions.
func WithMaxConcurrent(n int) Option {
	return func(c *ExecutorConfig) {
		c.MaxConcurrent = n
	}
}

// WithTimeout sets the default execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.DefaultTimeout = d
	}
}

// WithCache enables result caching with the given lifetime.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cfg *ExecutorConfig) {
		cfg.Cache = c
		cfg.CacheTTL = ttl
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *ExecutorConfig) {
		c.Metrics = m
	}
}

// FromSettings applies the resilience and cache sections of the service
// configuration. The cache backend itself is built by the caller.
func FromSettings(r config.ResilienceConfig, c config.CacheConfig) Option {
	return func(cfg *ExecutorConfig) {
		if r.MaxConcurrent > 0 {
			cfg.MaxConcurrent = r.MaxConcurrent
		}
		if r.Timeout > 0 {
			cfg.DefaultTimeout = r.Timeout.Duration()
		}
		if c.TTL > 0 {
			cfg.CacheTTL = c.TTL.Duration()
		}
	}
}

// NewExecutorWithOptions creates an executor with the given options.
func NewExecutorWithOptions(opts ...Option) *Executor {
	config := DefaultExecutorConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return NewExecutor(config)
}
