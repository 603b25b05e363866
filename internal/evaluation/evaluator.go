package evaluation

import (
	"fmt"
	"time"

	"github.com/mselser95/rit-tender-bot/pkg/types"
	"go.uber.org/zap"
)

// Scores holds the sub-scores of a tender evaluation.
type Scores struct {
	ILS       float64 // Immediate Liquidity Score, 0-1
	ILSProfit float64 // total profit available from immediate liquidity
	SQS       float64 // Spread Quality Score, 1-10
	OBBS      float64 // Order Book Balance Score, 2-10
	PLR       float64 // Position Limit Risk, 0-10 (0 = would breach)
	Composite float64 // weighted composite, 0-100
}

// Result is the outcome of a tender evaluation.
type Result struct {
	Accept         bool
	Scores         Scores
	Reason         string
	ProjectedNet   int
	ProjectedGross int
}

// Config holds evaluator configuration.
type Config struct {
	WeightILS  float64
	WeightSQS  float64
	WeightOBBS float64
	WeightPLR  float64

	AcceptThresholdHigh   float64
	AcceptThresholdMedium float64
	AcceptThresholdLow    float64

	MarginalMinTimeRemaining time.Duration
	MarginalMinILS           float64

	NetPositionLimit   int
	GrossPositionLimit int

	TransactionCostPerShare float64

	MinBookDepth        int
	MaxAcceptableSpread float64

	Logger *zap.Logger
}

// Evaluator scores tenders with a multi-factor model. It is pure: all market
// data is injected, and no call ever reaches the venue from here.
type Evaluator struct {
	config Config
	logger *zap.Logger
}

// New creates a new tender evaluator.
func New(cfg Config) *Evaluator {
	return &Evaluator{
		config: cfg,
		logger: cfg.Logger,
	}
}

// Declined builds a decline result carrying a failure reason. Used by the
// caller when market data could not be fetched; evaluation never retries.
func Declined(reason string) Result {
	return Result{Accept: false, Reason: reason}
}

// Evaluate scores a tender against a fresh book snapshot, the security quote,
// and current positions, and decides accept/decline.
func (e *Evaluator) Evaluate(
	tender *types.Tender,
	book *types.BookSnapshot,
	quote *types.Security,
	positions map[string]int,
	timeRemaining time.Duration,
) Result {
	projectedNet, projectedGross := projectExposure(tender, positions)

	ils, ilsProfit := e.immediateLiquidity(tender, book)
	sqs := e.spreadQuality(tender, quote)
	obbs := e.bookBalance(tender, book)
	plr := e.positionRisk(projectedNet, projectedGross)

	composite := ils*100*e.config.WeightILS +
		sqs*10*e.config.WeightSQS +
		obbs*10*e.config.WeightOBBS +
		plr*10*e.config.WeightPLR

	scores := Scores{
		ILS:       ils,
		ILSProfit: ilsProfit,
		SQS:       sqs,
		OBBS:      obbs,
		PLR:       plr,
		Composite: composite,
	}

	accept, reason := e.decide(scores, timeRemaining)

	TendersEvaluatedTotal.Inc()
	CompositeScore.Observe(composite)
	if accept {
		DecisionsTotal.WithLabelValues("accept").Inc()
	} else {
		DecisionsTotal.WithLabelValues("decline").Inc()
	}

	e.logger.Info("tender-evaluated",
		zap.Int("tender-id", tender.TenderID),
		zap.String("ticker", tender.Ticker),
		zap.Float64("ils", ils),
		zap.Float64("sqs", sqs),
		zap.Float64("obbs", obbs),
		zap.Float64("plr", plr),
		zap.Float64("composite", composite),
		zap.Bool("accept", accept),
		zap.String("reason", reason))

	return Result{
		Accept:         accept,
		Scores:         scores,
		Reason:         reason,
		ProjectedNet:   projectedNet,
		ProjectedGross: projectedGross,
	}
}

// projectExposure applies the tender to current positions and recomputes
// signed net and absolute gross exposure. A BUY tender hands us shares
// (adds quantity), a SELL tender takes them (subtracts).
func projectExposure(tender *types.Tender, positions map[string]int) (net int, gross int) {
	signed := tender.Quantity
	if tender.Side == types.SideSell {
		signed = -tender.Quantity
	}

	projected := make(map[string]int, len(positions)+1)
	for ticker, size := range positions {
		projected[ticker] = size
	}
	projected[tender.Ticker] += signed

	for _, size := range projected {
		net += size
		if size < 0 {
			gross -= size
		} else {
			gross += size
		}
	}
	return net, gross
}

// immediateLiquidity walks the book side that would absorb the unwind and
// accumulates quantity coverable at a profit. Returns the covered fraction
// and the total profit available.
func (e *Evaluator) immediateLiquidity(tender *types.Tender, book *types.BookSnapshot) (float64, float64) {
	if tender.Quantity <= 0 {
		return 0, 0
	}

	cost := e.config.TransactionCostPerShare
	remaining := tender.Quantity
	totalProfit := 0.0

	// BUY tender: we will be selling, walk bids. SELL tender: walk asks.
	levels := book.Bids
	if tender.Side == types.SideSell {
		levels = book.Asks
	}

	for _, level := range levels {
		available := level.Remaining()
		if available <= 0 {
			continue
		}

		var profitPerShare float64
		if tender.Side == types.SideBuy {
			profitPerShare = level.Price - tender.Price - cost
		} else {
			profitPerShare = tender.Price - level.Price - cost
		}

		if profitPerShare > 0 {
			coverable := remaining
			if available < coverable {
				coverable = available
			}
			totalProfit += float64(coverable) * profitPerShare
			remaining -= coverable
		}

		if remaining <= 0 {
			break
		}
	}

	covered := tender.Quantity - remaining
	return float64(covered) / float64(tender.Quantity), totalProfit
}

// spreadQuality maps the direction-adjusted edge of the tender price versus
// the quote midpoint, net of round-trip costs, onto fixed breakpoints.
func (e *Evaluator) spreadQuality(tender *types.Tender, quote *types.Security) float64 {
	mid := quote.Mid()
	if mid <= 0 {
		return 1
	}

	var spreadBPS float64
	if tender.Side == types.SideBuy {
		spreadBPS = (tender.Price - mid) / mid * 10000
	} else {
		spreadBPS = (mid - tender.Price) / mid * 10000
	}

	netSpreadBPS := spreadBPS - e.config.TransactionCostPerShare*2/mid*10000

	switch {
	case netSpreadBPS >= 100:
		return 10
	case netSpreadBPS >= 50:
		return 7
	case netSpreadBPS >= 30:
		return 5
	case netSpreadBPS >= 20:
		return 3
	default:
		return 1
	}
}

// bookBalance scores how much of the nearby depth sits on the side that
// favors a quick unwind.
func (e *Evaluator) bookBalance(tender *types.Tender, book *types.BookSnapshot) float64 {
	bidVolume := topVolume(book.Bids, 5)
	askVolume := topVolume(book.Asks, 5)

	total := bidVolume + askVolume
	if total == 0 {
		return 5 // neutral when the book is empty
	}

	favorable := bidVolume
	if tender.Side == types.SideSell {
		favorable = askVolume
	}
	ratio := float64(favorable) / float64(total)

	switch {
	case ratio >= 0.60:
		return 10
	case ratio >= 0.50:
		return 7
	case ratio >= 0.40:
		return 5
	default:
		return 2
	}
}

func topVolume(levels []types.BookLevel, n int) int {
	total := 0
	for i, level := range levels {
		if i >= n {
			break
		}
		total += level.Remaining()
	}
	return total
}

// positionRisk scores remaining headroom under net/gross limits. 0 means
// accepting would breach a limit and is a hard block.
func (e *Evaluator) positionRisk(projectedNet, projectedGross int) float64 {
	netUtil := abs(projectedNet) / float64(e.config.NetPositionLimit)
	grossUtil := float64(projectedGross) / float64(e.config.GrossPositionLimit)

	util := netUtil
	if grossUtil > util {
		util = grossUtil
	}

	switch {
	case util > 1.0:
		return 0
	case util <= 0.70:
		return 10
	case util <= 0.85:
		return 5
	case util <= 0.95:
		return 2
	default:
		return 0
	}
}

func abs(v int) float64 {
	if v < 0 {
		return float64(-v)
	}
	return float64(v)
}

// decide turns the scores into an accept/decline decision. A PLR of 0
// always declines regardless of the composite.
func (e *Evaluator) decide(scores Scores, timeRemaining time.Duration) (bool, string) {
	if scores.PLR == 0 {
		return false, "would breach position limits"
	}

	composite := scores.Composite

	if composite >= e.config.AcceptThresholdHigh {
		return true, fmt.Sprintf("high confidence (score=%.1f)", composite)
	}

	if composite >= e.config.AcceptThresholdMedium {
		return true, fmt.Sprintf("moderate confidence (score=%.1f)", composite)
	}

	if composite >= e.config.AcceptThresholdLow {
		if timeRemaining < e.config.MarginalMinTimeRemaining {
			return false, fmt.Sprintf("marginal score (%.1f) with time pressure", composite)
		}
		if scores.ILS >= e.config.MarginalMinILS {
			return true, fmt.Sprintf("marginal but %.0f%%+ immediate coverage (score=%.1f)", e.config.MarginalMinILS*100, composite)
		}
		return false, fmt.Sprintf("marginal score (%.1f) with insufficient liquidity", composite)
	}

	return false, fmt.Sprintf("score too low (%.1f)", composite)
}
