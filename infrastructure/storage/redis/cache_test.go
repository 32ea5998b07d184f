package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aiera-inc/aiera-mcp/domain/cache"
)

// unreachable points at a port nothing listens on.
func unreachable() Config {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:1"
	cfg.MaxRetries = -1
	cfg.DialTimeout = 200 * time.Millisecond
	return cfg
}

func TestCache_key(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{prefix: DefaultKeyPrefix, key: "find_events:ab12", want: "aiera-mcp:cache:find_events:ab12"},
		{prefix: "", key: "get_filing:ff", want: "cache:get_filing:ff"},
		{prefix: "prod:", key: "", want: "prod:cache:"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			if got := NewCacheFromClient(nil, tt.prefix).key(tt.key); got != tt.want {
				t.Errorf("key(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestCache_Stats(t *testing.T) {
	t.Parallel()

	c := NewCacheFromClient(nil, "test:")
	c.hits.Add(3)
	c.misses.Add(1)

	stats := c.Stats()
	if stats.Hits != 3 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v, want 3 hits 1 miss", stats)
	}
	if stats.HitRate() != 0.75 {
		t.Errorf("HitRate() = %f, want 0.75", stats.HitRate())
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	if err := wrapError(nil); err != nil {
		t.Errorf("wrapError(nil) = %v", err)
	}

	err := wrapError(context.DeadlineExceeded)
	if !errors.Is(err, cache.ErrOperationTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("wrapError(DeadlineExceeded) = %v, want timeout wrapping the original", err)
	}

	plain := errors.New("WRONGTYPE")
	if err := wrapError(plain); err != plain {
		t.Errorf("wrapError() = %v, want original error", err)
	}
}

func TestCache_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCacheFromClient(nil, "test:")
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
	if err := c.Set(ctx, "k", nil, cache.SetOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Set() error = %v, want context.Canceled", err)
	}
	if err := c.Delete(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Delete() error = %v, want context.Canceled", err)
	}
	if err := c.Clear(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Clear() error = %v, want context.Canceled", err)
	}
}

func TestCache_SetEmptyKey(t *testing.T) {
	t.Parallel()

	err := NewCacheFromClient(nil, "").Set(context.Background(), "", []byte("x"), cache.SetOptions{})
	if !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidKey", err)
	}
}

func TestNewCache_ConnectionFailed(t *testing.T) {
	t.Parallel()

	_, err := NewCache(context.Background(), unreachable())
	if !errors.Is(err, cache.ErrConnectionFailed) {
		t.Errorf("NewCache() error = %v, want ErrConnectionFailed", err)
	}
}
