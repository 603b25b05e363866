package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PublishedTotal tracks events published to the bus by type.
	PublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderbot_events_published_total",
			Help: "Total events published to the bus by type",
		},
		[]string{"type"},
	)

	// DroppedTotal tracks events dropped because a subscriber buffer was full.
	DroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_events_dropped_total",
		Help: "Total events dropped due to full subscriber buffers",
	})
)
