package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aiera-inc/aiera-mcp/domain/config"
	"github.com/aiera-inc/aiera-mcp/domain/tool"
	"github.com/aiera-inc/aiera-mcp/infrastructure/storage/memory"
)

func buildTool(t *testing.T, name string, readOnly bool, handler tool.Handler) tool.Tool {
	t.Helper()

	b := tool.NewBuilder(name).
		WithCategory(tool.CategoryEvents).
		WithHandler(handler)
	if readOnly {
		b = b.ReadOnly()
	}
	tl, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return tl
}

func countingHandler(calls *atomic.Int32) tool.Handler {
	return func(_ context.Context, input json.RawMessage) (tool.Result, error) {
		calls.Add(1)
		return tool.NewResult(json.RawMessage(`{"response":{"data":[]}}`)), nil
	}
}

type callRecorder struct {
	mu     sync.Mutex
	calls  map[string][]bool
	lookup map[string][]bool
}

func newCallRecorder() *callRecorder {
	return &callRecorder{calls: map[string][]bool{}, lookup: map[string][]bool{}}
}

func (r *callRecorder) RecordCorrection(context.Context, string, string) {}
func (r *callRecorder) RecordRegistration(context.Context, string, int) {}
func (r *callRecorder) RecordVocabularyRefresh(context.Context, string, bool) {}
func (r *callRecorder) RecordUpstreamError(context.Context, string, int) {}
func (r *callRecorder) RecordToolCall(_ context.Context, name string, ok bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[name] = append(r.calls[name], ok)
}
func (r *callRecorder) RecordCacheLookup(_ context.Context, name string, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookup[name] = append(r.lookup[name], hit)
}

func TestDefaultExecutorConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultExecutorConfig()
	if cfg.MaxConcurrent != 16 {
		t.Errorf("MaxConcurrent = %d, want 16", cfg.MaxConcurrent)
	}
	if cfg.DefaultTimeout != 60*time.Second {
		t.Errorf("DefaultTimeout = %v, want 60s", cfg.DefaultTimeout)
	}
	if cfg.Cache != nil {
		t.Error("cache enabled by default")
	}
}

func TestExecutor_Success(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	metrics := newCallRecorder()
	e := NewExecutorWithOptions(WithMetrics(metrics))

	result, err := e.Execute(context.Background(), buildTool(t, "find_events", true, countingHandler(&calls)), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Duration == 0 {
		t.Error("Duration not set")
	}
	if result.Cached {
		t.Error("result marked cached without a cache")
	}
	if got := metrics.calls["find_events"]; len(got) != 1 || !got[0] {
		t.Errorf("recorded calls = %v, want one success", got)
	}
}

func TestExecutor_Failure(t *testing.T) {
	t.Parallel()

	boom := errors.New("upstream down")
	metrics := newCallRecorder()
	c := memory.NewCache()
	e := NewExecutorWithOptions(WithMetrics(metrics), WithCache(c, time.Minute))

	tl := buildTool(t, "get_event", true, func(context.Context, json.RawMessage) (tool.Result, error) {
		return tool.Result{}, boom
	})
	if _, err := e.Execute(context.Background(), tl, json.RawMessage(`{"event_id":1}`)); !errors.Is(err, boom) {
		t.Fatalf("Execute() error = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Error("failed result was cached")
	}
	if got := metrics.calls["get_event"]; len(got) != 1 || got[0] {
		t.Errorf("recorded calls = %v, want one failure", got)
	}
}

func TestExecutor_CachesReadOnlyTools(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	metrics := newCallRecorder()
	e := NewExecutorWithOptions(WithCache(memory.NewCache(), time.Minute), WithMetrics(metrics))
	tl := buildTool(t, "find_events", true, countingHandler(&calls))
	ctx := context.Background()

	first, err := e.Execute(ctx, tl, json.RawMessage(`{"bloomberg_ticker":"AAPL:US","page":1}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	second, err := e.Execute(ctx, tl, json.RawMessage(`{"page": 1, "bloomberg_ticker": "AAPL:US"}`))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("handler calls = %d, want 1", calls.Load())
	}
	if first.Cached || !second.Cached {
		t.Errorf("cached flags = %v/%v, want false/true", first.Cached, second.Cached)
	}
	if string(second.Output) != string(first.Output) {
		t.Errorf("cached output = %s, want %s", second.Output, first.Output)
	}
	want := []bool{false, true}
	got := metrics.lookup["find_events"]
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("cache lookups = %v, want %v", got, want)
	}

	if _, err := e.Execute(ctx, tl, json.RawMessage(`{"bloomberg_ticker":"MSFT:US","page":1}`)); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("handler calls = %d, want 2 after new args", calls.Load())
	}
}

func TestExecutor_DoesNotCacheWrites(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	e := NewExecutorWithOptions(WithCache(memory.NewCache(), time.Minute))
	tl := buildTool(t, "create_transcrippet", false, countingHandler(&calls))

	for i := 0; i < 2; i++ {
		result, err := e.Execute(context.Background(), tl, json.RawMessage(`{"event_id":1}`))
		if err != nil {
			t.Fatal(err)
		}
		if result.Cached {
			t.Error("write tool served from cache")
		}
	}
	if calls.Load() != 2 {
		t.Errorf("handler calls = %d, want 2", calls.Load())
	}
}

func TestExecutor_Timeout(t *testing.T) {
	t.Parallel()

	e := NewExecutorWithOptions(WithTimeout(20 * time.Millisecond))
	tl := buildTool(t, "search_transcripts", true, func(ctx context.Context, _ json.RawMessage) (tool.Result, error) {
		<-ctx.Done()
		return tool.Result{}, ctx.Err()
	})

	_, err := e.Execute(context.Background(), tl, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want DeadlineExceeded", err)
	}
}

func TestExecutor_Bulkhead(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	e := NewExecutorWithOptions(WithMaxConcurrent(1))
	tl := buildTool(t, "find_filings", true, func(context.Context, json.RawMessage) (tool.Result, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return tool.NewResult(json.RawMessage(`{}`)), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Execute(context.Background(), tl, nil)
		}()
	}
	wg.Wait()

	if peak.Load() > 1 {
		t.Errorf("peak concurrency = %d, want at most 1", peak.Load())
	}
}

func TestExecutor_Wrap(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	e := NewExecutorWithOptions(WithCache(memory.NewCache(), time.Minute))
	wrapped := e.Wrap(buildTool(t, "get_available_indexes", true, countingHandler(&calls)))

	if wrapped.Name() != "get_available_indexes" || !wrapped.Annotations().ReadOnly {
		t.Errorf("wrapped tool lost its metadata: %s %+v", wrapped.Name(), wrapped.Annotations())
	}
	for i := 0; i < 3; i++ {
		if _, err := wrapped.Execute(context.Background(), nil); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("handler calls = %d, want 1", calls.Load())
	}
}

func TestFromSettings(t *testing.T) {
	t.Parallel()

	cfg := DefaultExecutorConfig()
	FromSettings(
		config.ResilienceConfig{Timeout: config.Duration(5 * time.Second), MaxConcurrent: 4},
		config.CacheConfig{TTL: config.Duration(time.Minute)},
	)(&cfg)

	if cfg.MaxConcurrent != 4 || cfg.DefaultTimeout != 5*time.Second || cfg.CacheTTL != time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}

	unchanged := DefaultExecutorConfig()
	FromSettings(config.ResilienceConfig{}, config.CacheConfig{})(&unchanged)
	if unchanged.MaxConcurrent != 16 || unchanged.DefaultTimeout != 60*time.Second {
		t.Errorf("zero settings changed defaults: %+v", unchanged)
	}
}
