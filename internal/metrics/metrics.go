// Package metrics exposes Prometheus collectors for the acquisition
// pipeline and the HTTP surface.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// once guards registration: the Prometheus registry panics on duplicate
// collector registration.
var once sync.Once

var (
	// StrategyAttemptsTotal counts individual strategy attempts.
	//
	// labels:
	// - strategy: library, local_headers, graphql, direct_scrape
	// - outcome: "success" or the failure kind (network_error, not_found, ...)
	StrategyAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelgrab_strategy_attempts_total",
			Help: "Strategy attempts by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	// AcquisitionsTotal counts completed acquisitions end to end, after
	// fallback and retry.
	AcquisitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelgrab_acquisitions_total",
			Help: "Completed acquisitions by outcome.",
		},
		[]string{"outcome"},
	)

	// AcquisitionDurationSeconds tracks the end-to-end latency of one
	// acquisition including all fallbacks and retries.
	AcquisitionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelgrab_acquisition_duration_seconds",
			Help:    "Acquisition latency distributions.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	// AcquisitionBytes tracks delivered video sizes.
	AcquisitionBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelgrab_acquisition_bytes",
			Help:    "Delivered video size distributions.",
			Buckets: prometheus.ExponentialBuckets(256*1024, 4, 8),
		},
	)

	// CaptionRequestsTotal counts caption generations by outcome.
	CaptionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelgrab_caption_requests_total",
			Help: "Caption generation requests by outcome.",
		},
		[]string{"outcome"},
	)

	// JobsInFlight is the number of jobs currently being processed.
	JobsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelgrab_jobs_in_flight",
			Help: "Acquisition jobs currently being processed.",
		},
	)

	// HTTPRequestsTotal counts HTTP requests by method, route pattern, and
	// status. Route patterns, not raw paths, to keep cardinality bounded.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelgrab_http_requests_total",
			Help: "HTTP requests by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds tracks HTTP request latency.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelgrab_http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Init registers all collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			StrategyAttemptsTotal,
			AcquisitionsTotal,
			AcquisitionDurationSeconds,
			AcquisitionBytes,
			CaptionRequestsTotal,
			JobsInFlight,
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
		)
	})
}

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
