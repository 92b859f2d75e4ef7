package optimizer

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess        = "success"
	outcomeAPIError       = "api_error"
	outcomeTransportError = "transport_error"
	outcomeDecodeError    = "decode_error"
)

var (
	calculateRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingredient_optimizer_calculate_requests_total",
			Help: "Total number of calculate requests sent to the optimizer service",
		},
		[]string{"outcome"},
	)

	calculateRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingredient_optimizer_calculate_duration_seconds",
			Help:    "Optimizer service round-trip latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

func outcomeOf(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.As(err, &apiErr):
		return outcomeAPIError
	case errors.Is(err, ErrDecode):
		return outcomeDecodeError
	default:
		return outcomeTransportError
	}
}

func observe(outcome string, elapsed time.Duration) {
	calculateRequestsTotal.WithLabelValues(outcome).Inc()
	calculateRequestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
