// Package resilience guards tool execution with fortify bulkheads, timeouts
// and the response cache.
package resilience

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"

	"github.com/aiera-inc/aiera-mcp/domain/cache"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
	"github.com/aiera-inc/aiera-mcp/infrastructure/telemetry"
)

// Executor runs tools behind a shared bulkhead and a per-call timeout.
// Results of cacheable tools are served from and stored in the cache.
// Upstream retries and circuit breaking live in the Aiera client.
type Executor struct {
	bulkhead bulkhead.Bulkhead[tool.Result]
	timeout  time.Duration
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  telemetry.Metrics
}

// ExecutorConfig configures the executor.
type ExecutorConfig struct {
	// MaxConcurrent limits concurrent tool executions.
	MaxConcurrent int

	// DefaultTimeout applies to tools without their own timeout annotation.
	DefaultTimeout time.Duration

	// Cache stores results of cacheable tools. Nil disables caching.
	Cache cache.Cache

	// CacheTTL is the lifetime of cached results.
	CacheTTL time.Duration

	// Metrics records call and cache outcomes.
	Metrics telemetry.Metrics
}

// DefaultExecutorConfig returns the default configuration.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrent:  16,
		DefaultTimeout: 60 * time.Second,
		CacheTTL:       5 * time.Minute,
	}
}

// NewExecutor creates an executor.
func NewExecutor(config ExecutorConfig) *Executor {
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultExecutorConfig().MaxConcurrent
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = telemetry.NoopMetricsProvider{}
	}

	return &Executor{
		bulkhead: bulkhead.New[tool.Result](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		timeout:  config.DefaultTimeout,
		cache:    config.Cache,
		cacheTTL: config.CacheTTL,
		metrics:  metrics,
	}
}

// NewDefaultExecutor creates an executor with the default configuration.
func NewDefaultExecutor() *Executor {
	return NewExecutor(DefaultExecutorConfig())
}

// Execute runs a tool.
// Composition order: Cache → Bulkhead → Timeout → Tool.
func (e *Executor) Execute(ctx context.Context, t tool.Tool, input json.RawMessage) (tool.Result, error) {
	start := time.Now()
	name := t.Name()

	key, cacheable := e.cacheKey(t, input)
	if cacheable {
		if result, ok := e.lookup(ctx, name, key); ok {
			result.Duration = time.Since(start)
			e.metrics.RecordToolCall(ctx, name, true, result.Duration)
			return result, nil
		}
	}

	result, err := e.bulkhead.Execute(ctx, func(ctx context.Context) (tool.Result, error) {
		if timeout := e.timeoutFor(t); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return t.Execute(ctx, input)
	})

	duration := time.Since(start)
	e.metrics.RecordToolCall(ctx, name, err == nil, duration)
	if err != nil {
		logging.Warn().
			Add(logging.ToolName(name)).
			Add(logging.Duration(duration)).
			Add(logging.ErrorField(err)).
			Msg("tool call failed")
		return tool.Result{}, err
	}

	result.Duration = duration
	if cacheable {
		e.store(ctx, name, key, result.Output)
	}
	logging.Debug().
		Add(logging.ToolName(name)).
		Add(logging.Duration(duration)).
		Msg("tool call completed")
	return result, nil
}

// Wrap returns a tool whose Execute runs through the executor.
func (e *Executor) Wrap(t tool.Tool) tool.Tool {
	return &guardedTool{Tool: t, executor: e}
}

func (e *Executor) timeoutFor(t tool.Tool) time.Duration {
	if seconds := t.Annotations().Timeout; seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return e.timeout
}

func (e *Executor) cacheKey(t tool.Tool, input json.RawMessage) (string, bool) {
	if e.cache == nil || !t.Annotations().CanCache() {
		return "", false
	}
	key, err := cache.Key(t.Name(), input)
	if err != nil {
		return "", false
	}
	return key, true
}

func (e *Executor) lookup(ctx context.Context, name, key string) (tool.Result, bool) {
	body, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		logging.Warn().
			Add(logging.ToolName(name)).
			Add(logging.ErrorField(err)).
			Msg("cache lookup failed")
		return tool.Result{}, false
	}
	e.metrics.RecordCacheLookup(ctx, name, ok)
	if !ok {
		return tool.Result{}, false
	}
	logging.Debug().
		Add(logging.ToolName(name)).
		Add(logging.Cached(true)).
		Msg("serving cached result")
	return tool.NewCachedResult(body), true
}

func (e *Executor) store(ctx context.Context, name, key string, body json.RawMessage) {
	if len(body) == 0 {
		return
	}
	if err := e.cache.Set(ctx, key, body, cache.SetOptions{TTL: e.cacheTTL}); err != nil {
		logging.Warn().
			Add(logging.ToolName(name)).
			Add(logging.ErrorField(err)).
			Msg("cache store failed")
	}
}

type guardedTool struct {
	tool.Tool
	executor *Executor
}

func (g *guardedTool) Execute(ctx context.Context, input json.RawMessage) (tool.Result, error) {
	return g.executor.Execute(ctx, g.Tool, input)
}
