package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/evaluation"
	"github.com/mselser95/rit-tender-bot/internal/events"
	"github.com/mselser95/rit-tender-bot/internal/lifecycle"
	"github.com/mselser95/rit-tender-bot/internal/planner"
	"github.com/mselser95/rit-tender-bot/internal/storage"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// State is the engine lifecycle state.
type State string

const (
	StateStarting   State = "STARTING"
	StateRunning    State = "RUNNING"
	StateMonitoring State = "MONITORING"
	StateEmergency  State = "EMERGENCY"
	StateStopped    State = "STOPPED"
)

// MarketClient is the slice of the trading API the engine needs directly.
// Order placement goes through the lifecycle manager, not through here.
type MarketClient interface {
	ListTenders(ctx context.Context) ([]types.Tender, error)
	AcceptTender(ctx context.Context, tenderID int) error
	DeclineTender(ctx context.Context, tenderID int) error
	GetSecurities(ctx context.Context, ticker string) ([]types.Security, error)
	GetBook(ctx context.Context, ticker string, depth int) (*types.BookSnapshot, error)
	GetCaseStatus(ctx context.Context) (*types.CaseStatus, error)
}

// Clock supplies the current time. Tests inject a fake.
type Clock interface {
	Now() time.Time
}

// Config holds engine configuration.
type Config struct {
	Client    MarketClient
	Evaluator *evaluation.Evaluator
	Planner   *planner.Planner
	Lifecycle *lifecycle.Manager
	Store     storage.Storage
	Bus       *events.Bus
	Clock     Clock
	Logger    *zap.Logger

	LoopInterval       time.Duration
	MonitorInterval    time.Duration
	EmergencyThreshold time.Duration
	MaxTenders         int
	BookFetchDepth     int
}

// Snapshot is a point-in-time view of the engine for operator surfaces.
type Snapshot struct {
	State              State                     `json:"state"`
	AcceptedTenders    int                       `json:"accepted_tenders"`
	ProcessedTenders   int                       `json:"processed_tenders"`
	TimeRemaining      float64                   `json:"time_remaining_seconds"`
	EmergencyTriggered bool                      `json:"emergency_triggered"`
	TrackedOrders      []lifecycle.TrackedOrder  `json:"tracked_orders"`
	Positions          []lifecycle.PositionState `json:"positions"`
}

// Engine is the control loop: it watches the session clock, polls for
// tenders, drives evaluation through execution, and pulls the emergency
// brake when the session is about to close.
type Engine struct {
	cfg Config

	mu            sync.Mutex
	state         State
	processed     map[int]struct{}
	accepted      int
	emergencyDone bool
	timeRemaining time.Duration
	lastMonitor   time.Time

	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates an engine in the STARTING state.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:       cfg,
		state:     StateStarting,
		processed: make(map[int]struct{}),
		done:      make(chan struct{}),
	}
}

// Start verifies venue connectivity, then launches the control loop.
func (e *Engine) Start(ctx context.Context) error {
	caseStatus, err := e.cfg.Client.GetCaseStatus(ctx)
	if err != nil {
		return err
	}

	e.cfg.Logger.Info("engine-starting",
		zap.String("case", caseStatus.Name),
		zap.String("case-status", caseStatus.Status),
		zap.Duration("time-remaining", caseTimeRemaining(caseStatus)))

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.setState(StateRunning)

	e.wg.Add(1)
	go e.run(runCtx)

	return nil
}

// Done is closed when the control loop exits, whether by session expiry or
// by Close.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Close stops the control loop and waits for it to exit.
func (e *Engine) Close() error {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
	return nil
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()
	defer close(e.done)
	defer e.finish(ctx)

	ticker := time.NewTicker(e.cfg.LoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			alive := e.step(ctx)
			StepDurationSeconds.Observe(time.Since(start).Seconds())
			if !alive {
				return
			}
		}
	}
}

// step executes one control loop iteration. It returns false when the
// session is over and the loop should exit.
func (e *Engine) step(ctx context.Context) bool {
	caseStatus, err := e.cfg.Client.GetCaseStatus(ctx)
	if err != nil {
		if types.IsFatalSession(err) {
			e.cfg.Logger.Error("case-status-fatal", zap.Error(err))
			return false
		}
		e.cfg.Logger.Warn("case-status-fetch-failed", zap.Error(err))
		return true
	}

	if !caseStatus.Active() {
		e.cfg.Logger.Info("case-inactive", zap.String("status", caseStatus.Status))
		return false
	}

	remaining := caseTimeRemaining(caseStatus)
	e.setTimeRemaining(remaining)
	if remaining <= 0 {
		e.cfg.Logger.Info("session-expired")
		return false
	}

	if remaining <= e.cfg.EmergencyThreshold {
		e.enterEmergency(ctx, remaining)
		return true
	}

	e.monitorPass(ctx, remaining)
	e.pollTenders(ctx, remaining)

	return true
}

// enterEmergency liquidates everything exactly once, then idles out the
// rest of the session.
func (e *Engine) enterEmergency(ctx context.Context, remaining time.Duration) {
	e.mu.Lock()
	alreadyDone := e.emergencyDone
	e.emergencyDone = true
	e.mu.Unlock()
	if alreadyDone {
		return
	}

	e.setState(StateEmergency)
	e.cfg.Logger.Warn("emergency-threshold-reached",
		zap.Duration("time-remaining", remaining))
	EmergencyTransitionsTotal.Inc()

	if err := e.cfg.Lifecycle.EmergencyLiquidation(ctx); err != nil {
		e.cfg.Logger.Error("emergency-liquidation-error", zap.Error(err))
	}
}

// monitorPass runs order repricing and position health on its own cadence.
func (e *Engine) monitorPass(ctx context.Context, remaining time.Duration) {
	now := e.cfg.Clock.Now()

	e.mu.Lock()
	due := now.Sub(e.lastMonitor) >= e.cfg.MonitorInterval
	if due {
		e.lastMonitor = now
	}
	e.mu.Unlock()
	if !due {
		return
	}

	e.setState(StateMonitoring)
	defer e.setState(StateRunning)

	if err := e.cfg.Lifecycle.RepricePass(ctx, remaining); err != nil {
		e.cfg.Logger.Warn("reprice-pass-failed", zap.Error(err))
	}
	if _, err := e.cfg.Lifecycle.PositionHealth(ctx); err != nil {
		e.cfg.Logger.Warn("position-health-failed", zap.Error(err))
	}
	MonitorPassesTotal.Inc()
}

// pollTenders fetches outstanding tenders and processes each unseen one
// exactly once. Polling pauses while the accepted-tender cap is reached.
func (e *Engine) pollTenders(ctx context.Context, remaining time.Duration) {
	e.mu.Lock()
	full := e.accepted >= e.cfg.MaxTenders
	e.mu.Unlock()
	if full {
		return
	}

	tenders, err := e.cfg.Client.ListTenders(ctx)
	if err != nil {
		e.cfg.Logger.Warn("tender-poll-failed", zap.Error(err))
		return
	}

	for i := range tenders {
		tender := tenders[i]

		e.mu.Lock()
		_, seen := e.processed[tender.TenderID]
		if !seen {
			e.processed[tender.TenderID] = struct{}{}
		}
		full := e.accepted >= e.cfg.MaxTenders
		e.mu.Unlock()
		if seen || full {
			continue
		}

		e.processTender(ctx, &tender, remaining)
	}
}

// processTender scores one tender, applies the safety gate, and executes the
// accept or decline path end to end.
func (e *Engine) processTender(ctx context.Context, tender *types.Tender, remaining time.Duration) {
	e.cfg.Logger.Info("tender-received",
		zap.Int("tender-id", tender.TenderID),
		zap.String("ticker", tender.Ticker),
		zap.String("side", string(tender.Side)),
		zap.Int("quantity", tender.Quantity),
		zap.Float64("price", tender.Price))

	result := e.evaluateTender(ctx, tender, remaining)

	if result.Accept {
		e.acceptTender(ctx, tender, result, remaining)
	} else {
		e.declineTender(ctx, tender, result)
	}
}

// evaluateTender gathers fresh market data and runs the gate and the scoring
// model. Any data failure degrades to a decline; evaluation never retries.
func (e *Engine) evaluateTender(ctx context.Context, tender *types.Tender, remaining time.Duration) evaluation.Result {
	book, err := e.cfg.Client.GetBook(ctx, tender.Ticker, e.cfg.BookFetchDepth)
	if err != nil {
		e.cfg.Logger.Warn("tender-book-unavailable",
			zap.Int("tender-id", tender.TenderID), zap.Error(err))
		return evaluation.Declined("order book unavailable")
	}

	if ok, reason := e.cfg.Evaluator.CheckTradeSafety(book); !ok {
		return evaluation.Declined(reason)
	}

	securities, err := e.cfg.Client.GetSecurities(ctx, "")
	if err != nil {
		e.cfg.Logger.Warn("tender-securities-unavailable",
			zap.Int("tender-id", tender.TenderID), zap.Error(err))
		return evaluation.Declined("security data unavailable")
	}

	positions := make(map[string]int, len(securities))
	var quote *types.Security
	for i := range securities {
		positions[securities[i].Ticker] = securities[i].Size
		if securities[i].Ticker == tender.Ticker {
			quote = &securities[i]
		}
	}
	if quote == nil {
		return evaluation.Declined("unknown ticker")
	}

	return e.cfg.Evaluator.Evaluate(tender, book, quote, positions, remaining)
}

func (e *Engine) acceptTender(ctx context.Context, tender *types.Tender, result evaluation.Result, remaining time.Duration) {
	if err := e.cfg.Client.AcceptTender(ctx, tender.TenderID); err != nil {
		e.cfg.Logger.Error("tender-accept-failed",
			zap.Int("tender-id", tender.TenderID), zap.Error(err))
		return
	}

	e.mu.Lock()
	e.accepted++
	e.mu.Unlock()
	TendersAcceptedTotal.Inc()

	e.cfg.Lifecycle.TrackPosition(tender.Ticker, tender.Quantity, tender.Price, tender.Side)
	plan := e.cfg.Planner.Plan(tender.Ticker, tender.Quantity, tender.Side, result.Scores.Composite)
	e.cfg.Lifecycle.SubmitPlan(ctx, plan, remaining)

	e.publish(events.New(events.TypeTenderAccepted, tender.Ticker, map[string]interface{}{
		"tender_id": tender.TenderID,
		"quantity":  tender.Quantity,
		"side":      string(tender.Side),
		"price":     tender.Price,
		"composite": result.Scores.Composite,
		"strategy":  string(plan.Strategy),
	}))

	e.storeDecision(ctx, tender, result, string(plan.Strategy))
}

func (e *Engine) declineTender(ctx context.Context, tender *types.Tender, result evaluation.Result) {
	if err := e.cfg.Client.DeclineTender(ctx, tender.TenderID); err != nil {
		e.cfg.Logger.Error("tender-decline-failed",
			zap.Int("tender-id", tender.TenderID), zap.Error(err))
	}
	TendersDeclinedTotal.Inc()

	e.cfg.Logger.Info("tender-declined",
		zap.Int("tender-id", tender.TenderID),
		zap.String("ticker", tender.Ticker),
		zap.String("reason", result.Reason))

	e.publish(events.New(events.TypeTenderDeclined, tender.Ticker, map[string]interface{}{
		"tender_id": tender.TenderID,
		"reason":    result.Reason,
		"composite": result.Scores.Composite,
	}))

	e.storeDecision(ctx, tender, result, "")
}

// storeDecision persists the audit record best-effort.
func (e *Engine) storeDecision(ctx context.Context, tender *types.Tender, result evaluation.Result, strategy string) {
	if e.cfg.Store == nil {
		return
	}

	record := &storage.DecisionRecord{
		ID:        uuid.NewString(),
		TenderID:  tender.TenderID,
		Ticker:    tender.Ticker,
		Side:      tender.Side,
		Quantity:  tender.Quantity,
		Price:     tender.Price,
		ILS:       result.Scores.ILS,
		SQS:       result.Scores.SQS,
		OBBS:      result.Scores.OBBS,
		PLR:       result.Scores.PLR,
		Composite: result.Scores.Composite,
		Accepted:  result.Accept,
		Reason:    result.Reason,
		Strategy:  strategy,
		DecidedAt: e.cfg.Clock.Now(),
	}
	if err := e.cfg.Store.StoreDecision(ctx, record); err != nil {
		e.cfg.Logger.Warn("decision-store-failed",
			zap.Int("tender-id", tender.TenderID), zap.Error(err))
	}
}

// finish logs the final session report. It always runs, whatever ended the
// loop.
func (e *Engine) finish(ctx context.Context) {
	e.setState(StateStopped)

	securities, err := e.cfg.Client.GetSecurities(ctx, "")
	if err != nil {
		e.cfg.Logger.Warn("final-report-unavailable", zap.Error(err))
	}

	var realized, unrealized float64
	openPositions := 0
	for _, sec := range securities {
		realized += sec.Realized
		unrealized += sec.Unrealized
		if sec.Size != 0 {
			openPositions++
			e.cfg.Logger.Info("final-position",
				zap.String("ticker", sec.Ticker),
				zap.Int("size", sec.Size),
				zap.Float64("unrealized", sec.Unrealized))
		}
	}

	e.mu.Lock()
	accepted := e.accepted
	processed := len(e.processed)
	e.mu.Unlock()

	e.cfg.Logger.Info("session-report",
		zap.Int("tenders-processed", processed),
		zap.Int("tenders-accepted", accepted),
		zap.Int("open-positions", openPositions),
		zap.Float64("realized-pnl", realized),
		zap.Float64("unrealized-pnl", unrealized))

	e.publish(events.New(events.TypeSessionEnded, "", map[string]interface{}{
		"tenders_processed": processed,
		"tenders_accepted":  accepted,
		"realized_pnl":      realized,
		"unrealized_pnl":    unrealized,
	}))
}

// Snapshot returns the engine's current view for the HTTP state endpoint.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		State:              e.state,
		AcceptedTenders:    e.accepted,
		ProcessedTenders:   len(e.processed),
		TimeRemaining:      e.timeRemaining.Seconds(),
		EmergencyTriggered: e.emergencyDone,
		TrackedOrders:      e.cfg.Lifecycle.TrackedOrders(),
		Positions:          e.cfg.Lifecycle.Positions(),
	}
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	StateGauge.Set(stateValue(s))
}

func (e *Engine) setTimeRemaining(d time.Duration) {
	e.mu.Lock()
	e.timeRemaining = d
	e.mu.Unlock()
	TimeRemainingSeconds.Set(d.Seconds())
}

func stateValue(s State) float64 {
	switch s {
	case StateStarting:
		return 0
	case StateRunning:
		return 1
	case StateMonitoring:
		return 2
	case StateEmergency:
		return 3
	default:
		return 4
	}
}

// caseTimeRemaining converts venue tick bookkeeping to wall time. One case
// tick is one second.
func caseTimeRemaining(cs *types.CaseStatus) time.Duration {
	totalTicks := cs.TicksPerPeriod * cs.TotalPeriods
	elapsed := (cs.Period-1)*cs.TicksPerPeriod + cs.Tick
	remaining := totalTicks - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining) * time.Second
}

func (e *Engine) publish(event events.Event) {
	if e.cfg.Bus != nil {
		e.cfg.Bus.Publish(event)
	}
}
