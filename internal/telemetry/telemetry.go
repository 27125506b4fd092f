// Package telemetry provides Prometheus metrics and tracing for the
// discovery pipeline.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "slopwatch"

// Metrics holds the pipeline's Prometheus metrics.
type Metrics struct {
	CandidatesProcessed *prometheus.CounterVec // labels: classification, method
	CandidatesSkipped   *prometheus.CounterVec // labels: reason
	CandidatesFailed    prometheus.Counter

	AICalls     prometheus.Counter
	AIRetries   prometheus.Counter
	AIFallbacks prometheus.Counter

	DiscoveryPages  *prometheus.CounterVec // labels: source_kind
	ScoringDuration prometheus.Histogram
	RunDuration     prometheus.Histogram
}

// Provider bundles metrics with an otel tracer.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider registers the pipeline metrics on the default registry.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus /metrics handler.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	return &Metrics{
		CandidatesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slopwatch_candidates_processed_total",
			Help: "Candidates classified, by verdict and method.",
		}, []string{"classification", "method"}),
		CandidatesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slopwatch_candidates_skipped_total",
			Help: "Candidates dropped before classification, by reason.",
		}, []string{"reason"}),
		CandidatesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slopwatch_candidates_failed_total",
			Help: "Candidates that errored during processing.",
		}),
		AICalls: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slopwatch_ai_calls_total",
			Help: "Calls issued to the text-generation provider.",
		}),
		AIRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slopwatch_ai_retries_total",
			Help: "Rate-limit retries against the text-generation provider.",
		}),
		AIFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slopwatch_ai_fallbacks_total",
			Help: "Degraded SUSPICIOUS fallback results.",
		}),
		DiscoveryPages: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "slopwatch_discovery_pages_total",
			Help: "Discovery pages fetched, by source kind.",
		}, []string{"source_kind"}),
		ScoringDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "slopwatch_scoring_duration_seconds",
			Help:    "Rule engine evaluation time per candidate.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "slopwatch_run_duration_seconds",
			Help:    "Wall time per discovery run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// RecordResult counts one produced classification.
func (p *Provider) RecordResult(classification, method string) {
	p.Metrics.CandidatesProcessed.WithLabelValues(classification, method).Inc()
}

// RecordSkip counts one pre-classification skip.
func (p *Provider) RecordSkip(reason string) {
	p.Metrics.CandidatesSkipped.WithLabelValues(reason).Inc()
}

// RecordAICall counts one text-generation provider call.
func (p *Provider) RecordAICall() { p.Metrics.AICalls.Inc() }

// RecordAIRetry counts one rate-limit retry.
func (p *Provider) RecordAIRetry() { p.Metrics.AIRetries.Inc() }

// RecordAIFallback counts one degraded fallback result.
func (p *Provider) RecordAIFallback() { p.Metrics.AIFallbacks.Inc() }

// RecordDiscoveryPage counts one fetched discovery page.
func (p *Provider) RecordDiscoveryPage(kind string) {
	p.Metrics.DiscoveryPages.WithLabelValues(kind).Inc()
}

// RecordRun records a completed run's duration and emits a run span.
func (p *Provider) RecordRun(ctx context.Context, runID string, elapsed time.Duration, processed int) {
	p.Metrics.RunDuration.Observe(elapsed.Seconds())

	_, span := p.Tracer.Start(ctx, "run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("processed", processed),
		))
	span.End()
}
