package lifecycle

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/events"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// VenueClient is the slice of the trading API the lifecycle manager needs.
type VenueClient interface {
	GetSecurities(ctx context.Context, ticker string) ([]types.Security, error)
	GetBook(ctx context.Context, ticker string, depth int) (*types.BookSnapshot, error)
	SubmitOrder(ctx context.Context, ticker string, orderType types.OrderType, quantity int, side types.Side, price float64) (*types.Order, error)
	CancelOrder(ctx context.Context, orderID int) error
	CancelAllOrders(ctx context.Context, ticker string) (*types.BulkCancelResult, error)
	GetOpenOrders(ctx context.Context, status types.OrderStatus) ([]types.Order, error)
}

// Clock supplies the current time. Tests inject a fake.
type Clock interface {
	Now() time.Time
}

// TrackedOrder is a resting limit order the manager owns and reprices.
type TrackedOrder struct {
	OrderID      int
	Ticker       string
	Side         types.Side
	Quantity     int
	Price        float64
	Tier         int
	CreatedAt    time.Time
	RepriceCount int
}

// PositionState is the unwind bookkeeping for one accepted tender position.
type PositionState struct {
	Ticker     string
	Quantity   int // signed: positive long, negative short
	EntryPrice float64
	AcceptedAt time.Time
}

// HealthAlert flags a position that needs operator attention. The manager
// surfaces alerts; it never acts on them.
type HealthAlert struct {
	Ticker     string  `json:"ticker"`
	Reason     string  `json:"reason"`
	Size       int     `json:"size"`
	Unrealized float64 `json:"unrealized"`
}

// Config carries the lifecycle manager's tunables.
type Config struct {
	Client VenueClient
	Clock  Clock
	Bus    *events.Bus
	Logger *zap.Logger

	DefaultOrderLimit int
	OrderLimits       map[string]int
	TickSize          float64
	CaseDuration      time.Duration
	NetPositionLimit  int

	// Patience thresholds: how long a resting order may sit before it is
	// repriced, by urgency band.
	PatienceUrgent   time.Duration
	PatienceModerate time.Duration
	PatienceRelaxed  time.Duration

	Tier3TimeFloor time.Duration
	BookFetchDepth int

	StopLossThreshold      float64
	LargePositionThreshold int
}

// Manager owns every order the bot places: it submits tiered plans, reprices
// stale resting orders, reconciles against venue state, and liquidates in an
// emergency. All methods are safe for concurrent use.
type Manager struct {
	cfg Config

	mu        sync.Mutex
	tracked   map[int]*TrackedOrder
	cancelled map[int]struct{} // order IDs we cancelled ourselves
	positions map[string]*PositionState
}

// New creates a lifecycle manager.
func New(cfg Config) *Manager {
	return &Manager{
		cfg:       cfg,
		tracked:   make(map[int]*TrackedOrder),
		cancelled: make(map[int]struct{}),
		positions: make(map[string]*PositionState),
	}
}

// orderLimit returns the per-order quantity cap for a ticker.
func (m *Manager) orderLimit(ticker string) int {
	if limit, ok := m.cfg.OrderLimits[ticker]; ok {
		return limit
	}
	return m.cfg.DefaultOrderLimit
}

// TrackPosition records a freshly accepted tender position. The entry is
// dropped automatically once the venue reports the exposure back at zero.
func (m *Manager) TrackPosition(ticker string, quantity int, entryPrice float64, side types.Side) {
	signed := quantity
	if side == types.SideSell {
		signed = -quantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.positions[ticker]; ok {
		existing.Quantity += signed
		return
	}
	m.positions[ticker] = &PositionState{
		Ticker:     ticker,
		Quantity:   signed,
		EntryPrice: entryPrice,
		AcceptedAt: m.cfg.Clock.Now(),
	}
}

// TrackedOrders returns a snapshot of the resting orders the manager owns.
func (m *Manager) TrackedOrders() []TrackedOrder {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := make([]TrackedOrder, 0, len(m.tracked))
	for _, o := range m.tracked {
		orders = append(orders, *o)
	}
	return orders
}

// Positions returns a snapshot of the tracked tender positions.
func (m *Manager) Positions() []PositionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	positions := make([]PositionState, 0, len(m.positions))
	for _, p := range m.positions {
		positions = append(positions, *p)
	}
	return positions
}

// track registers a venue order under management.
func (m *Manager) track(order *types.Order, tier, repriceCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tracked[order.OrderID] = &TrackedOrder{
		OrderID:      order.OrderID,
		Ticker:       order.Ticker,
		Side:         order.Side,
		Quantity:     order.Remaining(),
		Price:        order.Price,
		Tier:         tier,
		CreatedAt:    m.cfg.Clock.Now(),
		RepriceCount: repriceCount,
	}
	TrackedOrdersGauge.Set(float64(len(m.tracked)))
}

// untrack removes an order from management, optionally flagging it as
// self-cancelled so reconciliation does not treat its absence as a fill.
func (m *Manager) untrack(orderID int, selfCancelled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tracked, orderID)
	if selfCancelled {
		m.cancelled[orderID] = struct{}{}
	}
	TrackedOrdersGauge.Set(float64(len(m.tracked)))
}

// PositionHealth checks current exposures against the large-position and
// stop-loss thresholds. Alerts are surfaced for the operator; automated
// flattening is the emergency path's job, not this one's.
func (m *Manager) PositionHealth(ctx context.Context) ([]HealthAlert, error) {
	securities, err := m.cfg.Client.GetSecurities(ctx, "")
	if err != nil {
		return nil, err
	}

	var alerts []HealthAlert
	for _, sec := range securities {
		if abs(sec.Size) > m.cfg.LargePositionThreshold {
			alerts = append(alerts, HealthAlert{
				Ticker:     sec.Ticker,
				Reason:     "large_position",
				Size:       sec.Size,
				Unrealized: sec.Unrealized,
			})
		}
		if sec.Unrealized < m.cfg.StopLossThreshold {
			alerts = append(alerts, HealthAlert{
				Ticker:     sec.Ticker,
				Reason:     "stop_loss_breach",
				Size:       sec.Size,
				Unrealized: sec.Unrealized,
			})
		}
	}

	for _, alert := range alerts {
		HealthAlertsTotal.WithLabelValues(alert.Reason).Inc()
		m.cfg.Logger.Warn("position-health-alert",
			zap.String("ticker", alert.Ticker),
			zap.String("reason", alert.Reason),
			zap.Int("size", alert.Size),
			zap.Float64("unrealized", alert.Unrealized))
		m.publish(events.New(events.TypeHealthAlert, alert.Ticker, map[string]interface{}{
			"reason":     alert.Reason,
			"size":       alert.Size,
			"unrealized": alert.Unrealized,
		}))
	}

	return alerts, nil
}

func (m *Manager) publish(event events.Event) {
	if m.cfg.Bus != nil {
		m.cfg.Bus.Publish(event)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
