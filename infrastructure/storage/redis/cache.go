package redis

import (
	"context"
	"errors"
	"sync/atomic"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aiera-inc/aiera-mcp/domain/cache"
)

// Cache is a redis-backed response cache.
type Cache struct {
	client    goredis.Cmdable
	keyPrefix string
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewCache connects to redis and verifies the connection with a ping.
func NewCache(ctx context.Context, cfg Config, opts ...ConfigOption) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	client := goredis.NewClient(options(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(cache.ErrConnectionFailed, err)
	}

	return NewCacheFromClient(client, cfg.KeyPrefix), nil
}

// NewCacheFromClient creates a cache over an existing client.
func NewCacheFromClient(client goredis.Cmdable, keyPrefix string) *Cache {
	return &Cache{client: client, keyPrefix: keyPrefix}
}

func (c *Cache) key(key string) string {
	return c.keyPrefix + "cache:" + key
}

// Get retrieves a cached body.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	body, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapError(err)
	}
	c.hits.Add(1)
	return body, true, nil
}

// Set stores a body; a zero TTL keeps it until deleted.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}
	return wrapError(c.client.Set(ctx, c.key(key), value, opts.TTL).Err())
}

// Delete removes one entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrapError(c.client.Del(ctx, c.key(key)).Err())
}

// Clear removes every key under the cache prefix, in batches of 100.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	iter := c.client.Scan(ctx, 0, c.keyPrefix+"cache:*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return wrapError(err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return wrapError(err)
	}
	if len(batch) > 0 {
		return wrapError(c.client.Del(ctx, batch...).Err())
	}
	return nil
}

// Stats returns hit and miss counts. Size is not tracked.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close closes the underlying client if it supports closing.
func (c *Cache) Close() error {
	if closer, ok := c.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(cache.ErrOperationTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(cache.ErrOperationTimeout, err)
	}
	return err
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)
