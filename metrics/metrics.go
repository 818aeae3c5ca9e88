// Package metrics provides Prometheus metrics collection for the
// instructions API: HTTP request metrics plus counters for vocabulary
// lookups, instruction composition and translation substitution.
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	VocabularyLookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabulary_lookup_total",
			Help: "Vocabulary lookups by category and outcome (hit, miss, error)",
		},
		[]string{"category", "outcome"},
	)

	InstructionComposeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "instruction_compose_total",
			Help: "Instruction blocks composed from structured fields",
		},
	)

	TranslationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "translation_duration_seconds",
			Help:    "Translation substitution latency including lookups",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen recently)",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(VocabularyLookupTotal)
	prometheus.MustRegister(InstructionComposeTotal)
	prometheus.MustRegister(TranslationDuration)
	prometheus.MustRegister(RateLimiterBucketsTotal)
}
