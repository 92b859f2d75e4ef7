package server

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingredient_optimizer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingredient_optimizer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingredient_optimizer_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	rateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingredient_optimizer_rate_limit_rejects_total",
			Help: "Total number of submissions rejected due to rate limiting",
		},
	)

	panicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingredient_optimizer_panic_recoveries_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingredient_optimizer_sessions_active",
			Help: "Number of form sessions held in memory",
		},
	)

	sessionEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingredient_optimizer_session_evictions_total",
			Help: "Total number of form sessions evicted to stay within maxSessions",
		},
	)
)

// knownRoutes keeps the route label bounded.
var knownRoutes = map[string]struct{}{
	"/":                     {},
	"/ingredients":          {},
	"/optimize":             {},
	"/notification/dismiss": {},
	"/api/optimize":         {},
	"/api/ingredients":      {},
	"/api/version":          {},
	"/health":               {},
	"/metrics":              {},
}

func routeLabel(path string) string {
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	if strings.HasPrefix(path, staticPrefix) {
		return staticPrefix
	}
	return "other"
}
