package planner

import (
	"github.com/mselser95/rit-tender-bot/pkg/types"
	"go.uber.org/zap"
)

// Strategy is the unwind pacing chosen for an accepted tender.
type Strategy string

const (
	StrategyPatient    Strategy = "patient"
	StrategyBalanced   Strategy = "balanced"
	StrategyAggressive Strategy = "aggressive"
)

// Plan is a three-tier unwind plan for an accepted tender position.
// Tier 1 crosses the book immediately, tier 2 rests at the best opposing
// quote, tier 3 rests passively for price improvement.
type Plan struct {
	Ticker        string
	TotalQuantity int
	Direction     types.Side // opposite of the tender side
	Strategy      Strategy
	Tier1Qty      int
	Tier2Qty      int
	Tier3Qty      int
}

// Planner sizes unwind plans from composite scores. Pure and deterministic.
type Planner struct {
	logger *zap.Logger
}

// New creates a new execution planner.
func New(logger *zap.Logger) *Planner {
	return &Planner{logger: logger}
}

// StrategyForScore selects the unwind strategy for a composite score.
func StrategyForScore(composite float64) Strategy {
	switch {
	case composite >= 80:
		return StrategyPatient
	case composite >= 60:
		return StrategyBalanced
	default:
		return StrategyAggressive
	}
}

// tierSplits returns the (tier1, tier2, tier3) percentage splits for a
// strategy. Integer percentages keep tier sizing exact at any quantity.
func tierSplits(strategy Strategy) (int, int, int) {
	switch strategy {
	case StrategyPatient:
		return 25, 50, 25
	case StrategyBalanced:
		return 40, 45, 15
	default:
		return 60, 35, 5
	}
}

// Plan builds the tiered unwind plan for an accepted tender. Tier 3 absorbs
// the rounding remainder so the tiers always sum to the full quantity.
func (p *Planner) Plan(ticker string, quantity int, tenderSide types.Side, composite float64) Plan {
	strategy := StrategyForScore(composite)
	pct1, pct2, _ := tierSplits(strategy)

	tier1 := quantity * pct1 / 100
	tier2 := quantity * pct2 / 100
	tier3 := quantity - tier1 - tier2

	plan := Plan{
		Ticker:        ticker,
		TotalQuantity: quantity,
		Direction:     tenderSide.Opposite(),
		Strategy:      strategy,
		Tier1Qty:      tier1,
		Tier2Qty:      tier2,
		Tier3Qty:      tier3,
	}

	PlansTotal.WithLabelValues(string(strategy)).Inc()

	p.logger.Info("execution-plan-created",
		zap.String("ticker", ticker),
		zap.String("strategy", string(strategy)),
		zap.String("direction", string(plan.Direction)),
		zap.Int("tier1-qty", tier1),
		zap.Int("tier2-qty", tier2),
		zap.Int("tier3-qty", tier3))

	return plan
}
