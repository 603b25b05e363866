package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/events"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// EmergencyLiquidation flattens every exposure: cancel all resting orders
// best-effort, then market-close each nonzero position. Flat books make the
// call a no-op, so repeated invocations are safe.
func (m *Manager) EmergencyLiquidation(ctx context.Context) error {
	m.cfg.Logger.Warn("emergency-liquidation-started")
	LiquidationsTotal.Inc()

	if _, err := m.cfg.Client.CancelAllOrders(ctx, ""); err != nil {
		// Orders that survive the bulk cancel fill or expire with the case;
		// closing positions cannot wait on them.
		m.cfg.Logger.Error("emergency-cancel-all-failed", zap.Error(err))
	}
	m.dropAllTracked()

	securities, err := m.cfg.Client.GetSecurities(ctx, "")
	if err != nil {
		m.cfg.Logger.Error("emergency-securities-fetch-failed", zap.Error(err))
		return err
	}

	var result SubmitResult
	for _, sec := range securities {
		if sec.Size == 0 {
			continue
		}

		side := types.SideSell
		if sec.Size < 0 {
			side = types.SideBuy
		}
		quantity := abs(sec.Size)

		m.cfg.Logger.Warn("emergency-closing-position",
			zap.String("ticker", sec.Ticker),
			zap.Int("size", sec.Size),
			zap.String("side", string(side)),
			zap.Int("quantity", quantity))

		m.submitTier1(ctx, sec.Ticker, side, quantity, &result)

		m.publish(events.New(events.TypeLiquidation, sec.Ticker, map[string]interface{}{
			"size":     sec.Size,
			"side":     string(side),
			"quantity": quantity,
		}))
	}

	m.mu.Lock()
	m.positions = make(map[string]*PositionState)
	m.mu.Unlock()

	m.cfg.Logger.Warn("emergency-liquidation-finished",
		zap.Int("closed-shares", result.MarketSubmitted),
		zap.Int("failed-shares", result.FailedQuantity))

	return nil
}

// dropAllTracked marks every tracked order self-cancelled and forgets it.
func (m *Manager) dropAllTracked() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.tracked {
		m.cancelled[id] = struct{}{}
		delete(m.tracked, id)
	}
	TrackedOrdersGauge.Set(0)
}
