// Package aiera is the HTTP client for the Aiera REST API.
package aiera

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
	"github.com/aiera-inc/aiera-mcp/infrastructure/observability"
	"github.com/aiera-inc/aiera-mcp/infrastructure/telemetry"
)

// Header values sent on every request.
const (
	UserAgent = "Aiera-MCP/1.0.0"
	Origin    = "local_mcp"

	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://premium.aiera.com/api"

	// maxErrorBody bounds the response text kept on an APIError.
	maxErrorBody = 2048
)

// Config configures the client.
type Config struct {
	BaseURL string
	APIKey  string

	// Timeout bounds a single attempt.
	Timeout                 time.Duration
	MaxKeepaliveConnections int
	MaxConnections          int
	KeepaliveExpiry         time.Duration

	// RetryMaxAttempts applies to GET requests only; 1 disables retry.
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMultiplier   float64

	// BreakerThreshold is consecutive failures before the circuit opens;
	// zero disables the breaker.
	BreakerThreshold int
	BreakerTimeout   time.Duration

	// RateLimit is requests per second; zero disables limiting.
	RateLimit int
	RateBurst int
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:                 DefaultBaseURL,
		Timeout:                 30 * time.Second,
		MaxKeepaliveConnections: 10,
		MaxConnections:          20,
		KeepaliveExpiry:         30 * time.Second,
		RetryMaxAttempts:        3,
		RetryInitialDelay:       200 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerThreshold:        5,
		BreakerTimeout:          30 * time.Second,
	}
}

// Request describes one API call.
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// AdditionalInstructions are appended to the envelope instructions.
	AdditionalInstructions []string
	// SkipInstructions returns the body without the envelope.
	SkipInstructions bool
}

// Fetcher is the client surface tools depend on.
type Fetcher interface {
	Do(ctx context.Context, req Request) (json.RawMessage, error)
	Fetch(ctx context.Context, req Request) (json.RawMessage, error)
	Wrap(body json.RawMessage, additional ...string) (json.RawMessage, error)
}

// Client calls the Aiera API. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  func(context.Context) (string, error)
	http    *http.Client
	retry   retry.Retry[*attempt]
	breaker circuitbreaker.CircuitBreaker[*attempt]
	limiter ratelimit.RateLimiter
	tracer  trace.Tracer
	metrics telemetry.Metrics
	now     func() time.Time
}

var _ Fetcher = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithClock sets the clock used for envelope timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer sets the tracer for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithAPIKeyProvider resolves the API key per request, overriding the
// configured key.
func WithAPIKeyProvider(fn func(context.Context) (string, error)) Option {
	return func(c *Client) {
		c.apiKey = fn
	}
}

// NewClient creates a client from cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryMaxAttempts <= 0 {
		cfg.RetryMaxAttempts = 1
	}
	if cfg.RetryMultiplier < 1 {
		cfg.RetryMultiplier = 1
	}

	key := cfg.APIKey
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  func(context.Context) (string, error) { return key, nil },
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(cfg),
		},
		retry: retry.New[*attempt](retry.Config{
			MaxAttempts:   cfg.RetryMaxAttempts,
			InitialDelay:  cfg.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    cfg.RetryMultiplier,
		}),
		tracer:  otel.Tracer("github.com/aiera-inc/aiera-mcp/infrastructure/aiera"),
		metrics: telemetry.NoopMetricsProvider{},
		now:     time.Now,
	}

	if cfg.BreakerThreshold > 0 {
		threshold := uint32(cfg.BreakerThreshold) // #nosec G115 -- checked positive above
		c.breaker = circuitbreaker.New[*attempt](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    cfg.BreakerTimeout,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		})
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = cfg.RateLimit
		}
		c.limiter = ratelimit.New(&ratelimit.Config{
			Rate:  cfg.RateLimit,
			Burst: burst,
		})
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newTransport(cfg Config) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = cfg.MaxKeepaliveConnections
	t.MaxIdleConnsPerHost = cfg.MaxKeepaliveConnections
	t.MaxConnsPerHost = cfg.MaxConnections
	t.IdleConnTimeout = cfg.KeepaliveExpiry
	return t
}

// Do performs the request and wraps the body in the instructions envelope.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	body, err := c.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.SkipInstructions {
		return body, nil
	}
	return c.Wrap(body, req.AdditionalInstructions...)
}

// Wrap places body in the instructions envelope stamped with the client clock.
func (c *Client) Wrap(body json.RawMessage, additional ...string) (json.RawMessage, error) {
	return Wrap(body, c.now(), additional...)
}

// attempt carries the outcome of one HTTP exchange. Non-retryable API
// errors ride in err so that neither retry nor the breaker sees them.
type attempt struct {
	body json.RawMessage
	err  error
}

// Fetch performs the request and returns the raw JSON body of a 200 or 201
// response.
func (c *Client) Fetch(ctx context.Context, req Request) (json.RawMessage, error) {
	apiKey, err := c.apiKey(ctx)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	if c.limiter != nil && !c.limiter.Allow(ctx, "aiera") {
		return nil, ErrRateLimited
	}

	requestID := uuid.NewString()
	ctx, span := observability.StartClientSpan(ctx, c.tracer, method+" "+req.Endpoint,
		attribute.String("http.request.method", method),
		attribute.String("aiera.endpoint", req.Endpoint),
		attribute.String("aiera.request_id", requestID),
	)

	start := time.Now()
	res, err := c.execute(ctx, method, func(ctx context.Context) (*attempt, error) {
		return c.send(ctx, method, req, apiKey, requestID)
	})
	if err == nil {
		err = res.err
	}
	observability.EndSpan(span, err)

	if err != nil {
		c.recordFailure(ctx, req.Endpoint, requestID, err)
		return nil, err
	}

	logging.Debug().
		Add(logging.Component("aiera")).
		Add(logging.Endpoint(req.Endpoint)).
		Add(logging.RequestID(requestID)).
		Add(logging.Duration(time.Since(start))).
		Msg("upstream request completed")
	return res.body, nil
}

func (c *Client) execute(ctx context.Context, method string, fn func(context.Context) (*attempt, error)) (*attempt, error) {
	call := fn
	if method == http.MethodGet {
		call = func(ctx context.Context) (*attempt, error) {
			return c.retry.Do(ctx, fn)
		}
	}
	if c.breaker != nil {
		return c.breaker.Execute(ctx, call)
	}
	return call(ctx)
}

func (c *Client) send(ctx context.Context, method string, req Request, apiKey, requestID string) (*attempt, error) {
	u := c.baseURL + req.Endpoint
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return &attempt{err: fmt.Errorf("encode request body: %w", err)}, nil
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &attempt{err: fmt.Errorf("build request: %w", err)}, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", UserAgent)
	httpReq.Header.Set("X-MCP-Origin", Origin)
	httpReq.Header.Set("X-API-Key", apiKey)
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return &attempt{err: fmt.Errorf("%w: %v", ErrNetwork, ctx.Err())}, nil
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		text := string(data)
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		apiErr := &APIError{Status: resp.StatusCode, Endpoint: req.Endpoint, Body: strings.TrimSpace(text)}
		if apiErr.Temporary() || resp.StatusCode >= http.StatusInternalServerError {
			return nil, apiErr
		}
		return &attempt{err: apiErr}, nil
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &attempt{body: json.RawMessage("null")}, nil
	}
	if !json.Valid(data) {
		return &attempt{err: fmt.Errorf("%w: body is not JSON", ErrInvalidResponse)}, nil
	}
	return &attempt{body: json.RawMessage(data)}, nil
}

func (c *Client) recordFailure(ctx context.Context, endpoint, requestID string, err error) {
	status := 0
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	c.metrics.RecordUpstreamError(ctx, endpoint, status)

	logging.Error().
		Add(logging.Component("aiera")).
		Add(logging.Endpoint(endpoint)).
		Add(logging.RequestID(requestID)).
		Add(logging.StatusCode(status)).
		Add(logging.ErrorField(err)).
		Msg("upstream request failed")
}
