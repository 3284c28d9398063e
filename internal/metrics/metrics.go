// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route template and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RecipeWritesTotal counts recipe create, update and delete outcomes.
	RecipeWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Total number of recipe writes by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// MarkerTogglesTotal counts favorite, cart and follow toggles.
	MarkerTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_marker_toggles_total",
			Help: "Total number of marker add/remove calls by kind and outcome",
		},
		[]string{"kind", "operation", "outcome"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limited_total",
			Help: "Total number of requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)
)

// ObserveRequest records one finished HTTP request
func ObserveRequest(method, route, status string, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Outcome maps an error to the outcome label
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
