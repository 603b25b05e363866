package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PlansTotal tracks execution plans created by strategy.
var PlansTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tenderbot_execution_plans_total",
		Help: "Total execution plans created by strategy",
	},
	[]string{"strategy"},
)
