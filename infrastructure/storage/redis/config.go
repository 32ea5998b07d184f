// Package redis provides the redis-backed response cache and vocabulary source.
package redis

import (
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aiera-inc/aiera-mcp/domain/config"
)

// DefaultKeyPrefix namespaces every key written by this package.
const DefaultKeyPrefix = "aiera-mcp:"

// Config holds redis connection settings.
type Config struct {
	// Address is the server address (host:port).
	Address string

	Password string
	DB       int

	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int

	// KeyPrefix is prepended to all keys.
	KeyPrefix string
}

// DefaultConfig returns a Config for a local server.
func DefaultConfig() Config {
	return Config{
		Address:      "localhost:6379",
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		KeyPrefix:    DefaultKeyPrefix,
	}
}

// FromSettings overlays the redis section of the service configuration on
// the defaults.
func FromSettings(s config.RedisConfig) Config {
	cfg := DefaultConfig()
	if s.Addr != "" {
		cfg.Address = s.Addr
	}
	cfg.Password = s.Password
	cfg.DB = s.DB
	if s.KeyPrefix != "" {
		cfg.KeyPrefix = s.KeyPrefix
	}
	return cfg
}

// ConfigOption configures the connection.
type ConfigOption func(*Config)

// WithAddress sets the server address.
func WithAddress(addr string) ConfigOption {
	return func(c *Config) {
		c.Address = addr
	}
}

// WithKeyPrefix sets the key prefix.
func WithKeyPrefix(prefix string) ConfigOption {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}

// WithTimeouts sets connection timeouts.
func WithTimeouts(dial, read, write time.Duration) ConfigOption {
	return func(c *Config) {
		c.DialTimeout = dial
		c.ReadTimeout = read
		c.WriteTimeout = write
	}
}

// NewClient opens a client without checking connectivity.
func NewClient(cfg Config, opts ...ConfigOption) *goredis.Client {
	for _, opt := range opts {
		opt(&cfg)
	}
	return goredis.NewClient(options(cfg))
}

func options(cfg Config) *goredis.Options {
	return &goredis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}
}
