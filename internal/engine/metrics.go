package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StateGauge encodes the engine state (0 starting, 1 running,
	// 2 monitoring, 3 emergency, 4 stopped).
	StateGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tenderbot_engine_state",
		Help: "Engine state (0=starting 1=running 2=monitoring 3=emergency 4=stopped)",
	})

	// TimeRemainingSeconds is the session clock as last observed.
	TimeRemainingSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tenderbot_session_time_remaining_seconds",
		Help: "Trading session time remaining",
	})

	// TendersAcceptedTotal counts accepted tenders.
	TendersAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_tenders_accepted_total",
		Help: "Total tenders accepted",
	})

	// TendersDeclinedTotal counts declined tenders.
	TendersDeclinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_tenders_declined_total",
		Help: "Total tenders declined",
	})

	// StepDurationSeconds observes control loop cycle latency.
	StepDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tenderbot_engine_step_duration_seconds",
		Help:    "Control loop cycle duration",
		Buckets: prometheus.DefBuckets,
	})

	// MonitorPassesTotal counts monitoring passes (reprice plus health).
	MonitorPassesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_monitor_passes_total",
		Help: "Total monitoring passes executed",
	})

	// EmergencyTransitionsTotal counts transitions into the emergency state.
	EmergencyTransitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_emergency_transitions_total",
		Help: "Total transitions into emergency liquidation",
	})
)
