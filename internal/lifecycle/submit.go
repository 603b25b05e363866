package lifecycle

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/events"
	"github.com/mselser95/rit-tender-bot/internal/planner"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// SubmitResult summarizes a best-effort plan submission.
type SubmitResult struct {
	MarketSubmitted  int // shares sent as immediate market orders
	RestingSubmitted int // shares resting as tracked limit orders
	FailedQuantity   int // shares that could not be placed
}

// SubmitPlan executes a tiered unwind plan. Each tier degrades independently:
// tier 2 falls back to market execution when no opposing quote exists, tier 3
// falls back to tier 2 pricing. With little session time left the passive
// tier is folded into tier 2 up front.
func (m *Manager) SubmitPlan(ctx context.Context, plan planner.Plan, timeRemaining time.Duration) SubmitResult {
	tier1, tier2, tier3 := plan.Tier1Qty, plan.Tier2Qty, plan.Tier3Qty
	if tier3 > 0 && timeRemaining <= m.cfg.Tier3TimeFloor {
		m.cfg.Logger.Info("tier3-folded-into-tier2",
			zap.String("ticker", plan.Ticker),
			zap.Duration("time-remaining", timeRemaining))
		tier2 += tier3
		tier3 = 0
	}

	var result SubmitResult
	m.submitTier1(ctx, plan.Ticker, plan.Direction, tier1, &result)
	m.submitTier2(ctx, plan.Ticker, plan.Direction, tier2, 2, &result)
	if tier3 > 0 {
		m.submitTier3(ctx, plan.Ticker, plan.Direction, tier3, &result)
	}

	m.cfg.Logger.Info("plan-submitted",
		zap.String("ticker", plan.Ticker),
		zap.String("strategy", string(plan.Strategy)),
		zap.Int("market-shares", result.MarketSubmitted),
		zap.Int("resting-shares", result.RestingSubmitted),
		zap.Int("failed-shares", result.FailedQuantity))

	return result
}

// submitTier1 crosses the book with sequential market orders, each capped at
// the per-ticker order limit.
func (m *Manager) submitTier1(ctx context.Context, ticker string, side types.Side, quantity int, result *SubmitResult) {
	limit := m.orderLimit(ticker)
	for remaining := quantity; remaining > 0; {
		chunk := remaining
		if chunk > limit {
			chunk = limit
		}

		order, err := m.cfg.Client.SubmitOrder(ctx, ticker, types.OrderTypeMarket, chunk, side, 0)
		if err != nil {
			m.cfg.Logger.Error("market-order-failed",
				zap.String("ticker", ticker),
				zap.String("side", string(side)),
				zap.Int("quantity", chunk),
				zap.Error(err))
			OrderFailuresTotal.WithLabelValues("market").Inc()
			result.FailedQuantity += remaining
			return
		}

		OrdersSubmittedTotal.WithLabelValues("market", "1").Inc()
		result.MarketSubmitted += chunk
		remaining -= chunk

		m.publish(events.New(events.TypeOrderSubmitted, ticker, map[string]interface{}{
			"order_id": order.OrderID,
			"type":     string(types.OrderTypeMarket),
			"side":     string(side),
			"quantity": chunk,
			"tier":     1,
		}))
	}
}

// submitTier2 rests limit orders at the best opposing quote, split evenly
// across the minimum number of orders that respects the per-ticker limit.
// Without a usable opposing quote the quantity is executed as tier 1.
func (m *Manager) submitTier2(ctx context.Context, ticker string, side types.Side, quantity, tier int, result *SubmitResult) {
	if quantity <= 0 {
		return
	}

	price, ok := m.bestOpposingPrice(ctx, ticker, side)
	if !ok {
		m.cfg.Logger.Warn("tier2-no-opposing-quote",
			zap.String("ticker", ticker),
			zap.Int("quantity", quantity))
		m.submitTier1(ctx, ticker, side, quantity, result)
		return
	}

	m.submitRestingSplit(ctx, ticker, side, quantity, price, tier, result)
}

// submitTier3 rests limit orders priced one and a half ticks inside the best
// opposing quote, seeking price improvement. Falls back to tier 2 pricing
// when the book is unusable.
func (m *Manager) submitTier3(ctx context.Context, ticker string, side types.Side, quantity int, result *SubmitResult) {
	base, ok := m.bestOpposingPrice(ctx, ticker, side)
	if !ok {
		m.cfg.Logger.Warn("tier3-no-opposing-quote",
			zap.String("ticker", ticker),
			zap.Int("quantity", quantity))
		m.submitTier2(ctx, ticker, side, quantity, 2, result)
		return
	}

	improvement := 1.5 * m.cfg.TickSize
	price := base + improvement
	if side == types.SideBuy {
		price = base - improvement
	}
	price = m.roundToTick(price)

	m.submitRestingSplit(ctx, ticker, side, quantity, price, 3, result)
}

// submitRestingSplit places quantity as limit orders at price, distributing
// the division remainder one share at a time across the leading orders.
func (m *Manager) submitRestingSplit(ctx context.Context, ticker string, side types.Side, quantity int, price float64, tier int, result *SubmitResult) {
	limit := m.orderLimit(ticker)
	numOrders := (quantity + limit - 1) / limit
	base := quantity / numOrders
	remainder := quantity % numOrders

	tierLabel := "2"
	if tier == 3 {
		tierLabel = "3"
	}

	for i := 0; i < numOrders; i++ {
		chunk := base
		if i < remainder {
			chunk++
		}
		if chunk == 0 {
			continue
		}

		order, err := m.cfg.Client.SubmitOrder(ctx, ticker, types.OrderTypeLimit, chunk, side, price)
		if err != nil {
			m.cfg.Logger.Error("limit-order-failed",
				zap.String("ticker", ticker),
				zap.String("side", string(side)),
				zap.Int("quantity", chunk),
				zap.Float64("price", price),
				zap.Int("tier", tier),
				zap.Error(err))
			OrderFailuresTotal.WithLabelValues("limit").Inc()
			result.FailedQuantity += chunk
			continue
		}

		m.track(order, tier, 0)
		OrdersSubmittedTotal.WithLabelValues("limit", tierLabel).Inc()
		result.RestingSubmitted += chunk

		m.publish(events.New(events.TypeOrderSubmitted, ticker, map[string]interface{}{
			"order_id": order.OrderID,
			"type":     string(types.OrderTypeLimit),
			"side":     string(side),
			"quantity": chunk,
			"price":    price,
			"tier":     tier,
		}))
	}
}

// bestOpposingPrice fetches the book and returns the best quote on the side
// our order would trade against.
func (m *Manager) bestOpposingPrice(ctx context.Context, ticker string, side types.Side) (float64, bool) {
	book, err := m.cfg.Client.GetBook(ctx, ticker, m.cfg.BookFetchDepth)
	if err != nil {
		m.cfg.Logger.Warn("book-fetch-failed", zap.String("ticker", ticker), zap.Error(err))
		return 0, false
	}

	if side == types.SideSell {
		best, ok := book.BestBid()
		return best.Price, ok
	}
	best, ok := book.BestAsk()
	return best.Price, ok
}

// roundToTick snaps a price onto the venue tick grid.
func (m *Manager) roundToTick(price float64) float64 {
	tick := m.cfg.TickSize
	if tick <= 0 {
		return price
	}
	return math.Round(price/tick) * tick
}
