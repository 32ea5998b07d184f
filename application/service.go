package application

import (
	"context"
	"errors"
	"fmt"
	"io"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	aieramcp "github.com/aiera-inc/aiera-mcp"
	"github.com/aiera-inc/aiera-mcp/domain/cache"
	"github.com/aiera-inc/aiera-mcp/domain/config"
	"github.com/aiera-inc/aiera-mcp/domain/correction"
	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
	"github.com/aiera-inc/aiera-mcp/infrastructure/mcp"
	"github.com/aiera-inc/aiera-mcp/infrastructure/observability"
	"github.com/aiera-inc/aiera-mcp/infrastructure/resilience"
	"github.com/aiera-inc/aiera-mcp/infrastructure/storage/memory"
	redisstore "github.com/aiera-inc/aiera-mcp/infrastructure/storage/redis"
	"github.com/aiera-inc/aiera-mcp/infrastructure/telemetry"
	infravocab "github.com/aiera-inc/aiera-mcp/infrastructure/vocabulary"
	"github.com/aiera-inc/aiera-mcp/pack/catalog"
)

// ServerName is announced to MCP clients.
const ServerName = "aiera-mcp"

// ServerInstructions are shown to MCP clients on initialization.
const ServerInstructions = `Tools for Aiera financial data: events and transcripts, SEC filings, equities, indexes and watchlists, company documents, Third Bridge expert calls, transcrippets and semantic search.
Discover IDs with the find_* tools before calling get_* tools. Tickers, event types and document categories are normalized; correction notices are returned in the instructions of each response.`

// ErrServiceClosed is returned by Run after Close.
var ErrServiceClosed = errors.New("service closed")

// Service wires a configuration into a running MCP server: the upstream
// client, vocabulary sources, correction engine, tool catalog, selection
// and the resilient executor around every selected tool.
type Service struct {
	cfg     *config.Config
	version string

	store      *vocabulary.Store
	corrector  *correction.Engine
	catalog    *catalog.Catalog
	controller *Controller
	selected   *ResolvedSet
	refresher  *infravocab.Refresher
	watched    *infravocab.FileSource
	server     *mcp.Server
	tracing    *observability.Provider
	metrics    telemetry.Metrics

	closers []func(context.Context) error
	closed  bool
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	version     string
	fetcher     aiera.Fetcher
	metrics     telemetry.Metrics
	traceWriter io.Writer
	redis       goredis.UniversalClient
}

// WithVersion sets the version announced to clients and traces.
func WithVersion(v string) ServiceOption {
	return func(o *serviceOptions) {
		o.version = v
	}
}

// WithFetcher replaces the Aiera HTTP client.
func WithFetcher(f aiera.Fetcher) ServiceOption {
	return func(o *serviceOptions) {
		o.fetcher = f
	}
}

// WithServiceMetrics replaces the OpenTelemetry metrics provider.
func WithServiceMetrics(m telemetry.Metrics) ServiceOption {
	return func(o *serviceOptions) {
		o.metrics = m
	}
}

// WithTraceWriter sets where the stdout trace exporter writes.
func WithTraceWriter(w io.Writer) ServiceOption {
	return func(o *serviceOptions) {
		o.traceWriter = w
	}
}

// WithRedisClient shares one redis client between the vocabulary source
// and the response cache instead of dialing from configuration.
func WithRedisClient(c goredis.UniversalClient) ServiceOption {
	return func(o *serviceOptions) {
		o.redis = c
	}
}

// NewService builds every component from cfg. It fails on an invalid tool
// selection before anything is served.
func NewService(ctx context.Context, cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	o := serviceOptions{version: aieramcp.Version}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{cfg: cfg, version: o.version}
	ok := false
	defer func() {
		if !ok {
			_ = s.Close(context.Background())
		}
	}()

	if err := s.initTracing(ctx, o); err != nil {
		return nil, err
	}
	s.metrics = o.metrics
	if s.metrics == nil {
		s.metrics = telemetry.NewMetricsProvider(telemetry.MetricsConfig{
			MeterName:    telemetry.DefaultMetricsConfig().MeterName,
			MeterVersion: s.version,
		})
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = s.newClient()
	}

	s.store = vocabulary.NewStore(vocabulary.NewSnapshot(nil))
	s.corrector = correction.NewEngine(s.store,
		correction.WithAutoCorrectThreshold(cfg.Correction.AutoCorrectThreshold),
		correction.WithSuggestThreshold(cfg.Correction.SuggestThreshold),
		correction.WithMaxSuggestions(cfg.Correction.MaxSuggestions),
		correction.WithStrictFreeText(cfg.Correction.StrictFreeText),
	)
	s.refresher = s.newRefresher(fetcher, o)

	cat, err := catalog.New(catalog.Config{
		Client:    fetcher,
		Corrector: s.corrector,
		Metrics:   s.metrics,
		PageSize:  cfg.Aiera.DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}
	s.catalog = cat

	s.controller, err = NewController(ControllerConfig{
		Registry: cat.Registry,
		Groups:   cat.Groups,
		Metrics:  s.metrics,
	})
	if err != nil {
		return nil, err
	}
	s.selected, err = s.controller.Register(SelectionRequest{
		Include: cfg.Tools.Include,
		Exclude: cfg.Tools.Exclude,
	})
	if err != nil {
		return nil, err
	}

	execOpts := []resilience.Option{
		resilience.FromSettings(cfg.Resilience, cfg.Cache),
		resilience.WithMetrics(s.metrics),
	}
	if c := s.newCache(o); c != nil {
		execOpts = append(execOpts, resilience.WithCache(c, cfg.Cache.TTL.Duration()))
	}
	executor := resilience.NewExecutorWithOptions(execOpts...)

	s.server = mcp.NewServer(mcp.ServerConfig{
		Name:         ServerName,
		Version:      s.version,
		Instructions: ServerInstructions,
		Middleware:   mcp.DefaultMiddleware(cfg.Server.RequestTimeout.Duration()),
	})
	for _, t := range s.selected.Tools() {
		s.server.Bind(executor.Wrap(t))
	}

	logging.Info().
		Add(logging.Component("service")).
		Add(logging.Count("registered", len(cat.Registry.Names()))).
		Add(logging.Count("selected", s.selected.Len())).
		Add(logging.Str("version", s.version)).
		Msg("tools bound")

	ok = true
	return s, nil
}

func (s *Service) initTracing(ctx context.Context, o serviceOptions) error {
	exporter, valid := observability.ParseExporter(s.cfg.Tracing.Exporter)
	if !valid {
		return fmt.Errorf("%w: %q", observability.ErrUnknownExporter, s.cfg.Tracing.Exporter)
	}
	tcfg := observability.DefaultConfig()
	tcfg.ServiceName = ServerName
	tcfg.ServiceVersion = s.version
	tcfg.Exporter = exporter
	tcfg.Endpoint = s.cfg.Tracing.Endpoint
	tcfg.Insecure = s.cfg.Tracing.Insecure
	tcfg.SampleRate = s.cfg.Tracing.SampleRate
	tcfg.Writer = o.traceWriter

	p, err := observability.NewFromConfig(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	if exporter != observability.ExporterNoop {
		p.Install()
	}
	s.tracing = p
	s.closers = append(s.closers, p.Shutdown)
	return nil
}

func (s *Service) newClient() *aiera.Client {
	c := s.cfg
	return aiera.NewClient(aiera.Config{
		BaseURL:                 c.Aiera.BaseURL,
		APIKey:                  c.Aiera.APIKey,
		Timeout:                 c.HTTP.Timeout.Duration(),
		MaxKeepaliveConnections: c.HTTP.MaxKeepaliveConnections,
		MaxConnections:          c.HTTP.MaxConnections,
		KeepaliveExpiry:         c.HTTP.KeepaliveExpiry.Duration(),
		RetryMaxAttempts:        c.Resilience.Retry.MaxAttempts,
		RetryInitialDelay:       c.Resilience.Retry.InitialDelay.Duration(),
		RetryMultiplier:         c.Resilience.Retry.Multiplier,
		BreakerThreshold:        c.Resilience.CircuitBreaker.Threshold,
		BreakerTimeout:          c.Resilience.CircuitBreaker.Timeout.Duration(),
		RateLimit:               c.Resilience.RateLimit.Rate,
		RateBurst:               c.Resilience.RateLimit.Burst,
	},
		aiera.WithMetrics(s.metrics),
		aiera.WithTracer(s.tracing.Tracer("github.com/aiera-inc/aiera-mcp/infrastructure/aiera")),
	)
}

// newRefresher assembles vocabulary sources in precedence order: file,
// redis, upstream. Redis also receives the merged values.
func (s *Service) newRefresher(fetcher aiera.Fetcher, o serviceOptions) *infravocab.Refresher {
	vc := s.cfg.Vocabulary
	var sources []vocabulary.Source
	var refreshOpts []infravocab.RefresherOption

	if vc.File != "" {
		file := infravocab.NewFileSource(vc.File)
		sources = append(sources, file)
		if vc.Watch {
			s.watched = file
		}
	}
	if client := s.redisClient(vc.Redis, o); client != nil {
		src := redisstore.NewVocabularySource(client, redisstore.FromSettings(vc.Redis).KeyPrefix)
		sources = append(sources, src)
		refreshOpts = append(refreshOpts, infravocab.WithSink(src))
	}
	if vc.Upstream {
		sources = append(sources, infravocab.NewUpstreamSource(fetcher))
	}

	refreshOpts = append(refreshOpts,
		infravocab.WithMetrics(s.metrics),
		infravocab.WithInterval(vc.RefreshInterval.Duration()),
	)
	return infravocab.NewRefresher(s.store, sources, refreshOpts...)
}

func (s *Service) newCache(o serviceOptions) cache.Cache {
	cc := s.cfg.Cache
	if !cc.Enabled {
		return nil
	}
	if cc.Backend == "redis" {
		if client := s.redisClient(cc.Redis, o); client != nil {
			return redisstore.NewCacheFromClient(client, redisstore.FromSettings(cc.Redis).KeyPrefix)
		}
		logging.Warn().
			Add(logging.Component("service")).
			Msg("redis cache backend has no address; using memory")
	}
	return memory.NewCache(memory.WithMaxSize(cc.MaxEntries))
}

// redisClient returns the injected client, or dials one for a configured
// section. Dialed clients are closed with the service.
func (s *Service) redisClient(rc config.RedisConfig, o serviceOptions) goredis.UniversalClient {
	if o.redis != nil {
		return o.redis
	}
	if !rc.Enabled() {
		return nil
	}
	client := redisstore.NewClient(redisstore.FromSettings(rc))
	s.closers = append(s.closers, func(context.Context) error { return client.Close() })
	return client
}

// Catalog returns the full tool table.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Controller returns the registration controller.
func (s *Service) Controller() *Controller {
	return s.controller
}

// Selected returns the tools bound to the server.
func (s *Service) Selected() *ResolvedSet {
	return s.selected
}

// Corrector returns the correction engine.
func (s *Service) Corrector() *correction.Engine {
	return s.corrector
}

// Vocabulary returns the live vocabulary store.
func (s *Service) Vocabulary() *vocabulary.Store {
	return s.store
}

// Server returns the MCP server.
func (s *Service) Server() *mcp.Server {
	return s.server
}

// LoadVocabulary runs one refresh of every source. A failure leaves the
// closed enums in place, so the server stays usable.
func (s *Service) LoadVocabulary(ctx context.Context) error {
	return s.refresher.Refresh(ctx)
}

// Run loads vocabularies, starts background refresh and file watching,
// and serves on the configured transport until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	if s.closed {
		return ErrServiceClosed
	}

	if err := s.LoadVocabulary(ctx); err != nil {
		logging.Warn().
			Add(logging.Component("service")).
			Add(logging.ErrorField(err)).
			Msg("initial vocabulary load failed; serving closed enums only")
	}

	transport, known := config.NormalizeTransport(s.cfg.Server.Transport)
	if !known {
		logging.Warn().
			Add(logging.Component("service")).
			Add(logging.Str("transport", s.cfg.Server.Transport)).
			Msg("unknown transport; using streamable-http")
	}

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		s.refresher.Poll(serveCtx)
		return nil
	})
	if s.watched != nil {
		g.Go(func() error {
			err := s.watched.Watch(serveCtx, func(ctx context.Context) {
				if err := s.refresher.Refresh(ctx); err != nil {
					logging.Warn().
						Add(logging.Component("vocabulary")).
						Add(logging.Source(s.watched.Name())).
						Add(logging.ErrorField(err)).
						Msg("reload after file change failed")
				}
			})
			if err != nil {
				logging.Warn().
					Add(logging.Component("vocabulary")).
					Add(logging.ErrorField(err)).
					Msg("vocabulary file watch stopped")
			}
			return nil
		})
	}
	g.Go(func() error {
		defer stop()
		return s.server.Serve(serveCtx, transport, s.cfg.Server.Addr)
	})

	return g.Wait()
}

// Close releases the tracer and any redis connections.
func (s *Service) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
