package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	requestsTotal      *prometheus.CounterVec
	latencySeconds     *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	failoverTotal      *prometheus.CounterVec
	heuristicFallbacks prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizforge_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quizforge_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0, 60.0, 120.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizforge_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		failoverTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quizforge_provider_failover_total",
			Help: "Number of times the gateway fell back to an alternate provider.",
		}, []string{"from", "to"})

		heuristicFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizforge_heuristic_scoring_total",
			Help: "Number of answers scored by the heuristic fallback path.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, failoverTotal, heuristicFallbacks)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// Failovers exposes the counter for provider failover events.
func Failovers() *prometheus.CounterVec {
	RegisterMetrics()
	return failoverTotal
}

// HeuristicFallbacks exposes the counter for heuristic-scored answers.
func HeuristicFallbacks() prometheus.Counter {
	RegisterMetrics()
	return heuristicFallbacks
}
