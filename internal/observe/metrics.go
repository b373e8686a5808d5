// Package observe provides application-wide observability primitives for the
// interviewer server: OpenTelemetry metrics, distributed tracing, structured
// logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all interviewer metrics.
const meterName = "github.com/MuddySheep/AI-Interviewer"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// SessionDuration tracks completed interview session length.
	SessionDuration metric.Float64Histogram

	// ReportDuration tracks report LLM generation latency.
	ReportDuration metric.Float64Histogram

	// --- Counters ---

	// AudioChunksSent counts candidate audio chunks forwarded to the live provider.
	AudioChunksSent metric.Int64Counter

	// PlaybackSegments counts interviewer audio segments scheduled for playback.
	PlaybackSegments metric.Int64Counter

	// FramesAnalyzed counts video frames run through visual analysis. Use with attribute:
	//   attribute.String("status", "ok"|"rejected")
	FramesAnalyzed metric.Int64Counter

	// FramesSampled counts video frames forwarded to the live provider.
	FramesSampled metric.Int64Counter

	// Nudges counts coaching nudges by category and outcome. Use with attributes:
	//   attribute.String("category", ...), attribute.String("outcome", "shown"|"suppressed")
	Nudges metric.Int64Counter

	// TranscriptItems counts transcript entries by role.
	TranscriptItems metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of interview sessions in progress.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// reportBuckets defines histogram bucket boundaries (in seconds) for report
// generation latency.
var reportBuckets = []float64{
	0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60,
}

// sessionBuckets defines histogram bucket boundaries (in seconds) for
// interview session length.
var sessionBuckets = []float64{
	60, 180, 300, 600, 900, 1200, 1800, 2700, 3600,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.SessionDuration, err = m.Float64Histogram("interviewer.session.duration",
		metric.WithDescription("Length of completed interview sessions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(sessionBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ReportDuration, err = m.Float64Histogram("interviewer.report.duration",
		metric.WithDescription("Latency of post-interview report generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(reportBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.AudioChunksSent, err = m.Int64Counter("interviewer.audio.chunks_sent",
		metric.WithDescription("Total candidate audio chunks forwarded to the live provider."),
	); err != nil {
		return nil, err
	}
	if met.PlaybackSegments, err = m.Int64Counter("interviewer.playback.segments",
		metric.WithDescription("Total interviewer audio segments scheduled for playback."),
	); err != nil {
		return nil, err
	}
	if met.FramesAnalyzed, err = m.Int64Counter("interviewer.frames.analyzed",
		metric.WithDescription("Total video frames run through visual analysis by status."),
	); err != nil {
		return nil, err
	}
	if met.FramesSampled, err = m.Int64Counter("interviewer.frames.sampled",
		metric.WithDescription("Total video frames forwarded to the live provider."),
	); err != nil {
		return nil, err
	}
	if met.Nudges, err = m.Int64Counter("interviewer.nudges",
		metric.WithDescription("Total coaching nudges by category and outcome."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptItems, err = m.Int64Counter("interviewer.transcript.items",
		metric.WithDescription("Total transcript entries by role."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("interviewer.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("interviewer.active_sessions",
		metric.WithDescription("Number of interview sessions in progress."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("interviewer.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordNudge is a convenience method that records a nudge counter increment
// with the standard attribute set.
func (m *Metrics) RecordNudge(ctx context.Context, category, outcome string) {
	m.Nudges.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("category", category),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordTranscriptItem is a convenience method that records a transcript
// entry counter increment.
func (m *Metrics) RecordTranscriptItem(ctx context.Context, role string) {
	m.TranscriptItems.Add(ctx, 1,
		metric.WithAttributes(attribute.String("role", role)),
	)
}

// RecordFrameAnalyzed is a convenience method that records a frame analysis
// counter increment.
func (m *Metrics) RecordFrameAnalyzed(ctx context.Context, status string) {
	m.FramesAnalyzed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordProviderError is a convenience method that records a provider error
// counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
