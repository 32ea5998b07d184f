// Package telemetry provides OpenTelemetry metrics for the MCP server.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricCorrectionOutcomes  = "aiera.correction.outcomes"
	MetricRegistrationResults = "aiera.registration.results"
	MetricToolCalls           = "aiera.tool.calls"
	MetricToolDuration        = "aiera.tool.duration"
	MetricVocabularyRefreshes = "aiera.vocabulary.refreshes"
	MetricCacheLookups        = "aiera.cache.lookups"
	MetricUpstreamErrors      = "aiera.upstream.errors"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	correctionOutcomes  metric.Int64Counter
	registrationResults metric.Int64Counter
	toolCalls           metric.Int64Counter
	vocabularyRefreshes metric.Int64Counter
	cacheLookups        metric.Int64Counter
	upstreamErrors      metric.Int64Counter

	toolDuration metric.Float64Histogram

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/aiera-inc/aiera-mcp").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/aiera-inc/aiera-mcp",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider on the global meter provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}

	meter := otel.GetMeterProvider().Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{meter: meter}
	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})
	return mp
}

func (mp *MetricsProvider) initInstruments() error {
	var err error

	mp.correctionOutcomes, err = mp.meter.Int64Counter(
		MetricCorrectionOutcomes,
		metric.WithDescription("Parameter corrections by kind and outcome"),
		metric.WithUnit("{correction}"),
	)
	if err != nil {
		return err
	}

	mp.registrationResults, err = mp.meter.Int64Counter(
		MetricRegistrationResults,
		metric.WithDescription("Tool selection attempts by final state"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return err
	}

	mp.toolCalls, err = mp.meter.Int64Counter(
		MetricToolCalls,
		metric.WithDescription("Number of tool calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	mp.vocabularyRefreshes, err = mp.meter.Int64Counter(
		MetricVocabularyRefreshes,
		metric.WithDescription("Vocabulary source loads"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return err
	}

	mp.cacheLookups, err = mp.meter.Int64Counter(
		MetricCacheLookups,
		metric.WithDescription("Response cache lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return err
	}

	mp.upstreamErrors, err = mp.meter.Int64Counter(
		MetricUpstreamErrors,
		metric.WithDescription("Failed Aiera API requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	mp.toolDuration, err = mp.meter.Float64Histogram(
		MetricToolDuration,
		metric.WithDescription("Duration of tool calls"),
		metric.WithUnit("ms"),
	)
	return err
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordCorrection records one correction outcome.
func (mp *MetricsProvider) RecordCorrection(ctx context.Context, kind, outcome string) {
	mp.correctionOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// RecordRegistration records the final state of a selection attempt.
func (mp *MetricsProvider) RecordRegistration(ctx context.Context, state string, tools int) {
	mp.registrationResults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("state", state),
		attribute.Int("tools", tools),
	))
}

// RecordToolCall records a tool call and its duration.
func (mp *MetricsProvider) RecordToolCall(ctx context.Context, toolName string, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("tool", toolName),
		attribute.Bool("success", success),
	)
	mp.toolCalls.Add(ctx, 1, attrs)
	mp.toolDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordVocabularyRefresh records a vocabulary source load.
func (mp *MetricsProvider) RecordVocabularyRefresh(ctx context.Context, source string, success bool) {
	mp.vocabularyRefreshes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("success", success),
	))
}

// RecordCacheLookup records a response cache lookup.
func (mp *MetricsProvider) RecordCacheLookup(ctx context.Context, toolName string, hit bool) {
	mp.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", toolName),
		attribute.Bool("hit", hit),
	))
}

// RecordUpstreamError records a failed upstream request.
func (mp *MetricsProvider) RecordUpstreamError(ctx context.Context, endpoint string, status int) {
	mp.upstreamErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.Int("status", status),
	))
}

// NoopMetricsProvider is a no-op metrics provider for tests or when metrics are disabled.
type NoopMetricsProvider struct{}

// RecordCorrection is a no-op.
func (NoopMetricsProvider) RecordCorrection(context.Context, string, string) {}

// RecordRegistration is a no-op.
func (NoopMetricsProvider) RecordRegistration(context.Context, string, int) {}

// RecordToolCall is a no-op.
func (NoopMetricsProvider) RecordToolCall(context.Context, string, bool, time.Duration) {}

// RecordVocabularyRefresh is a no-op.
func (NoopMetricsProvider) RecordVocabularyRefresh(context.Context, string, bool) {}

// RecordCacheLookup is a no-op.
func (NoopMetricsProvider) RecordCacheLookup(context.Context, string, bool) {}

// RecordUpstreamError is a no-op.
func (NoopMetricsProvider) RecordUpstreamError(context.Context, string, int) {}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordCorrection(ctx context.Context, kind, outcome string)
	RecordRegistration(ctx context.Context, state string, tools int)
	RecordToolCall(ctx context.Context, toolName string, success bool, duration time.Duration)
	RecordVocabularyRefresh(ctx context.Context, source string, success bool)
	RecordCacheLookup(ctx context.Context, toolName string, hit bool)
	RecordUpstreamError(ctx context.Context, endpoint string, status int)
}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = NoopMetricsProvider{}
)
