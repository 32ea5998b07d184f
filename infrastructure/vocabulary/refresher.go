package vocabulary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
	"github.com/aiera-inc/aiera-mcp/infrastructure/telemetry"
)

// ErrNoSources is returned when every source failed to load.
var ErrNoSources = errors.New("no vocabulary source loaded")

// Sink persists merged vocabularies for other instances to read.
type Sink interface {
	Save(ctx context.Context, values map[vocabulary.Kind][]string) error
}

// Refresher loads sources, merges their values and publishes one new
// snapshot per refresh.
type Refresher struct {
	store    *vocabulary.Store
	sources  []vocabulary.Source
	sink     Sink
	metrics  telemetry.Metrics
	interval time.Duration

	mu sync.Mutex // serializes refreshes
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithSink sets where merged upstream values are written back.
func WithSink(sink Sink) RefresherOption {
	return func(r *Refresher) {
		r.sink = sink
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) RefresherOption {
	return func(r *Refresher) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithInterval sets the period of Run. Zero refreshes once.
func WithInterval(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		r.interval = d
	}
}

// NewRefresher creates a refresher publishing to store. Sources are read
// in order; for a kind served by several sources the values are unioned
// with earlier sources first.
func NewRefresher(store *vocabulary.Store, sources []vocabulary.Source, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		store:   store,
		sources: sources,
		metrics: telemetry.NoopMetricsProvider{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh loads every source once and publishes the merged snapshot. A
// failing source is logged and skipped; kinds no source served keep their
// current values. Refresh fails only when all sources fail.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sources) == 0 {
		return nil
	}

	merged := make(map[vocabulary.Kind][]string)
	writeBack := make(map[vocabulary.Kind][]string)
	incomplete := false
	var errs []error
	for _, src := range r.sources {
		start := time.Now()
		values, err := src.Load(ctx)
		r.metrics.RecordVocabularyRefresh(ctx, src.Name(), err == nil)
		if err != nil {
			errs = append(errs, err)
			if !r.isSink(src) {
				incomplete = true
			}
			logging.Warn().
				Add(logging.Component("vocabulary")).
				Add(logging.Source(src.Name())).
				Add(logging.ErrorField(err)).
				Msg("vocabulary source failed")
			continue
		}
		for kind, vals := range values {
			merged[kind] = append(merged[kind], vals...)
			if !r.isSink(src) {
				writeBack[kind] = append(writeBack[kind], vals...)
			}
		}
		logging.Debug().
			Add(logging.Component("vocabulary")).
			Add(logging.Source(src.Name())).
			Add(logging.Duration(time.Since(start))).
			Msg("vocabulary source loaded")
	}
	if len(errs) == len(r.sources) {
		return errors.Join(append([]error{ErrNoSources}, errs...)...)
	}

	current := r.store.Snapshot()
	next := make(map[vocabulary.Kind][]string, len(vocabulary.Kinds()))
	for _, kind := range vocabulary.Kinds() {
		if kind.Closed() {
			continue
		}
		if vals, ok := merged[kind]; ok {
			next[kind] = vals
		} else {
			next[kind] = current.All(kind)
		}
	}
	snap := vocabulary.NewSnapshot(next)
	r.store.Publish(snap)

	logging.Info().
		Add(logging.Component("vocabulary")).
		Add(logging.Count("tickers", snap.Len(vocabulary.KindTicker))).
		Add(logging.Count("categories", snap.Len(vocabulary.KindCategory))).
		Add(logging.Count("keywords", snap.Len(vocabulary.KindKeyword))).
		Msg("vocabulary published")

	// Only values from the other sources are written back, and only once
	// all of them have loaded.
	if r.sink != nil && !incomplete && len(writeBack) > 0 {
		if err := r.sink.Save(ctx, writeBack); err != nil {
			logging.Warn().
				Add(logging.Component("vocabulary")).
				Add(logging.ErrorField(err)).
				Msg("vocabulary write-back failed")
		}
	}
	return nil
}

// isSink reports whether src is also the write-back sink.
func (r *Refresher) isSink(src vocabulary.Source) bool {
	s, ok := src.(Sink)
	return ok && r.sink != nil && s == r.sink
}

// Run refreshes immediately and then on every interval until ctx is done.
// Periodic failures are logged; only the first refresh error is returned.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		return err
	}
	r.Poll(ctx)
	return nil
}

// Poll refreshes on every interval until ctx is done. It returns at once
// when no interval is set.
func (r *Refresher) Poll(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
				logging.Error().
					Add(logging.Component("vocabulary")).
					Add(logging.ErrorField(err)).
					Msg("periodic vocabulary refresh failed")
			}
		}
	}
}
