package ritapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDurationSeconds tracks venue API request latency per endpoint.
	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tenderbot_api_request_duration_seconds",
			Help:    "Duration of RIT API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// RequestErrorsTotal tracks venue API failures by endpoint and kind.
	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderbot_api_request_errors_total",
			Help: "Total RIT API request failures",
		},
		[]string{"endpoint", "kind"},
	)
)
