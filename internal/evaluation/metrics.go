package evaluation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TendersEvaluatedTotal tracks tenders scored by the evaluator.
	TendersEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenderbot_tenders_evaluated_total",
		Help: "Total number of tenders evaluated",
	})

	// DecisionsTotal tracks accept/decline decisions.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderbot_tender_decisions_total",
			Help: "Total tender decisions by outcome",
		},
		[]string{"decision"},
	)

	// CompositeScore tracks the distribution of composite scores.
	CompositeScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tenderbot_composite_score",
		Help:    "Composite tender evaluation score",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	// SafetyRejectionsTotal tracks safety-gate failures by reason.
	SafetyRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderbot_safety_rejections_total",
			Help: "Total tenders rejected by the pre-acceptance safety gate",
		},
		[]string{"reason"},
	)
)
