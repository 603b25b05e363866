package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersSubmittedTotal tracks orders placed by type and tier.
	OrdersSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderbot_orders_submitted_total",
			Help: "Total orders submitted by type and tier",
		},
		[]string{"type", "tier"},
	)

	// OrderFailuresTotal tracks order submissions rejected by the venue.
	OrderFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderbot_order_failures_total",
			Help: "Total order submission failures by type",
		},
		[]string{"type"},
	)

	// CancelFailuresTotal tracks cancels the venue rejected; the order stays
	// tracked and is retried on the next pass.
	CancelFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_order_cancel_failures_total",
		Help: "Total order cancel attempts rejected by the venue",
	})

	// RepricesTotal tracks successful cancel-and-replace cycles.
	RepricesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_order_reprices_total",
		Help: "Total stale orders cancelled and replaced",
	})

	// MarketFallbacksTotal tracks reprice slots resolved by market order.
	MarketFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderbot_market_fallbacks_total",
			Help: "Reprice failure fallbacks by outcome",
		},
		[]string{"outcome"},
	)

	// OrdersResolvedTotal tracks tracked orders that resolved on the venue.
	OrdersResolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_orders_resolved_total",
		Help: "Tracked orders no longer open on the venue (filled or expired)",
	})

	// TrackedOrdersGauge is the number of resting orders under management.
	TrackedOrdersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tenderbot_tracked_orders",
		Help: "Resting limit orders currently under management",
	})

	// HealthAlertsTotal tracks position health alerts by reason.
	HealthAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderbot_health_alerts_total",
			Help: "Position health alerts by reason",
		},
		[]string{"reason"},
	)

	// LiquidationsTotal counts emergency liquidation invocations.
	LiquidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_emergency_liquidations_total",
		Help: "Total emergency liquidation runs",
	})
)
