package lifecycle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/events"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// crossingUrgency is the urgency at or above which a repriced order crosses
// straight to the best opposing quote instead of stepping one tick.
const crossingUrgency = 0.7

// Urgency blends session time pressure with position utilization. Both run
// 0..1; the larger one wins. A securities fetch failure degrades to pure
// time pressure.
func (m *Manager) Urgency(ctx context.Context, timeRemaining time.Duration) float64 {
	elapsed := 1 - timeRemaining.Seconds()/m.cfg.CaseDuration.Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > 1 {
		elapsed = 1
	}

	securities, err := m.cfg.Client.GetSecurities(ctx, "")
	if err != nil {
		m.cfg.Logger.Warn("urgency-securities-fetch-failed", zap.Error(err))
		return elapsed
	}

	return maxFloat(elapsed, m.maxUtilization(securities))
}

func (m *Manager) maxUtilization(securities []types.Security) float64 {
	if m.cfg.NetPositionLimit <= 0 {
		return 0
	}
	util := 0.0
	for _, sec := range securities {
		u := float64(abs(sec.Size)) / float64(m.cfg.NetPositionLimit)
		if u > util {
			util = u
		}
	}
	return util
}

// patienceFor maps urgency to how long a resting order may sit unfilled.
func (m *Manager) patienceFor(urgency float64) time.Duration {
	switch {
	case urgency >= 0.8:
		return m.cfg.PatienceUrgent
	case urgency >= 0.4:
		return m.cfg.PatienceModerate
	default:
		return m.cfg.PatienceRelaxed
	}
}

// RepricePass reconciles tracked orders against the venue, then cancels and
// replaces any resting order older than the current patience window.
func (m *Manager) RepricePass(ctx context.Context, timeRemaining time.Duration) error {
	open, err := m.cfg.Client.GetOpenOrders(ctx, types.OrderStatusOpen)
	if err != nil {
		m.cfg.Logger.Warn("open-orders-fetch-failed", zap.Error(err))
		return err
	}
	m.reconcile(open)

	securities, err := m.cfg.Client.GetSecurities(ctx, "")
	if err != nil {
		m.cfg.Logger.Warn("securities-fetch-failed", zap.Error(err))
		securities = nil
	}
	m.clearFlatPositions(securities)

	elapsed := 1 - timeRemaining.Seconds()/m.cfg.CaseDuration.Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	urgency := maxFloat(elapsed, m.maxUtilization(securities))
	patience := m.patienceFor(urgency)
	now := m.cfg.Clock.Now()

	for _, order := range m.TrackedOrders() {
		if now.Sub(order.CreatedAt) <= patience {
			continue
		}
		m.repriceOrder(ctx, order, urgency)
	}

	return nil
}

// reconcile drops tracked orders the venue no longer reports as open and that
// we did not cancel ourselves: those resolved on the venue, typically filled.
func (m *Manager) reconcile(open []types.Order) {
	openIDs := make(map[int]struct{}, len(open))
	for _, o := range open {
		openIDs[o.OrderID] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, order := range m.tracked {
		if _, stillOpen := openIDs[id]; stillOpen {
			continue
		}
		if _, selfCancelled := m.cancelled[id]; selfCancelled {
			continue
		}
		delete(m.tracked, id)
		OrdersResolvedTotal.Inc()
		m.cfg.Logger.Info("order-resolved-on-venue",
			zap.Int("order-id", id),
			zap.String("ticker", order.Ticker),
			zap.Int("quantity", order.Quantity))
	}
	TrackedOrdersGauge.Set(float64(len(m.tracked)))
}

// clearFlatPositions drops tender position entries the venue reports flat.
func (m *Manager) clearFlatPositions(securities []types.Security) {
	if securities == nil {
		return
	}
	sizes := make(map[string]int, len(securities))
	for _, sec := range securities {
		sizes[sec.Ticker] = sec.Size
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for ticker := range m.positions {
		if sizes[ticker] == 0 {
			delete(m.positions, ticker)
			m.cfg.Logger.Info("position-flat", zap.String("ticker", ticker))
		}
	}
}

// repriceOrder cancels a stale order and replaces it at a more aggressive
// price. A failed cancel leaves the order tracked for the next pass. After a
// successful cancel the slot must not leak: any later failure falls back to
// a market order when urgency is high, otherwise the quantity is shed and
// position health reporting picks up the residue.
func (m *Manager) repriceOrder(ctx context.Context, order TrackedOrder, urgency float64) {
	if err := m.cfg.Client.CancelOrder(ctx, order.OrderID); err != nil {
		CancelFailuresTotal.Inc()
		m.cfg.Logger.Warn("cancel-failed-will-retry",
			zap.Int("order-id", order.OrderID),
			zap.String("ticker", order.Ticker),
			zap.Error(err))
		return
	}
	m.untrack(order.OrderID, true)

	newPrice, ok := m.replacementPrice(ctx, order, urgency)
	if ok {
		replacement, err := m.cfg.Client.SubmitOrder(ctx, order.Ticker, types.OrderTypeLimit, order.Quantity, order.Side, newPrice)
		if err == nil {
			m.track(replacement, order.Tier, order.RepriceCount+1)
			RepricesTotal.Inc()
			m.cfg.Logger.Info("order-repriced",
				zap.Int("old-order-id", order.OrderID),
				zap.Int("new-order-id", replacement.OrderID),
				zap.String("ticker", order.Ticker),
				zap.Float64("old-price", order.Price),
				zap.Float64("new-price", newPrice),
				zap.Float64("urgency", urgency),
				zap.Int("reprice-count", order.RepriceCount+1))
			m.publish(events.New(events.TypeOrderRepriced, order.Ticker, map[string]interface{}{
				"old_order_id": order.OrderID,
				"new_order_id": replacement.OrderID,
				"old_price":    order.Price,
				"new_price":    newPrice,
				"urgency":      urgency,
			}))
			return
		}
		m.cfg.Logger.Error("replacement-submit-failed",
			zap.Int("order-id", order.OrderID),
			zap.String("ticker", order.Ticker),
			zap.Error(err))
	}

	if urgency >= crossingUrgency {
		m.marketFallback(ctx, order)
		return
	}

	MarketFallbacksTotal.WithLabelValues("skipped").Inc()
	m.cfg.Logger.Warn("reprice-quantity-shed",
		zap.Int("order-id", order.OrderID),
		zap.String("ticker", order.Ticker),
		zap.Int("quantity", order.Quantity),
		zap.Float64("urgency", urgency))
}

// replacementPrice picks the new limit price. High urgency crosses to the
// best opposing quote exactly; otherwise the order steps one tick toward it.
func (m *Manager) replacementPrice(ctx context.Context, order TrackedOrder, urgency float64) (float64, bool) {
	best, ok := m.bestOpposingPrice(ctx, order.Ticker, order.Side)
	if !ok {
		return 0, false
	}

	if urgency >= crossingUrgency {
		return best, true
	}

	if order.Side == types.SideSell {
		return m.roundToTick(order.Price - m.cfg.TickSize), true
	}
	return m.roundToTick(order.Price + m.cfg.TickSize), true
}

// marketFallback converts an already-cancelled slot into an immediate fill.
func (m *Manager) marketFallback(ctx context.Context, order TrackedOrder) {
	fallback, err := m.cfg.Client.SubmitOrder(ctx, order.Ticker, types.OrderTypeMarket, order.Quantity, order.Side, 0)
	if err != nil {
		MarketFallbacksTotal.WithLabelValues("failed").Inc()
		m.cfg.Logger.Error("market-fallback-failed",
			zap.String("ticker", order.Ticker),
			zap.Int("quantity", order.Quantity),
			zap.Error(err))
		return
	}

	MarketFallbacksTotal.WithLabelValues("submitted").Inc()
	m.cfg.Logger.Info("market-fallback-submitted",
		zap.Int("order-id", fallback.OrderID),
		zap.String("ticker", order.Ticker),
		zap.Int("quantity", order.Quantity))
	m.publish(events.New(events.TypeOrderFallback, order.Ticker, map[string]interface{}{
		"order_id": fallback.OrderID,
		"quantity": order.Quantity,
		"side":     string(order.Side),
	}))
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
