// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysisRequests counts calls to the analysis service by endpoint and
	// outcome ("success", "error", "rejected").
	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_requests_total",
			Help: "Total analysis service requests",
		},
		[]string{"endpoint", "outcome"},
	)

	AnalysisRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_request_duration_seconds",
			Help:    "Analysis service request latency",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// CircuitBreakerState is 0=closed, 1=half-open, 2=open.
	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_circuit_breaker_state",
			Help: "Analysis service circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Fallbacks counts degraded values substituted for failed remote calls.
	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_fallbacks_total",
			Help: "Default values substituted for failed analysis calls",
		},
		[]string{"kind"}, // embedding, sentiment, mood_dimensions
	)

	Vetoes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_vetoes_total",
			Help: "Match vetoes by rule",
		},
		[]string{"rule"}, // thematic, mood, sentiment
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_run_duration_seconds",
			Help:    "Duration of a full playlist match run",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	SongsEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_songs_evaluated_total",
			Help: "Songs scored against a playlist",
		},
	)

	// FeatureCacheRequests counts text-feature cache lookups by kind and
	// result ("hit", "store_hit", "miss").
	FeatureCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_cache_requests_total",
			Help: "Text feature cache lookups",
		},
		[]string{"kind", "result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP API requests by route and status code",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
