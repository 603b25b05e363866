package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// MockMarketClient is a scriptable stand-in for the trading API client.
// Zero-value behaviors return empty results; set the function fields or the
// canned data to script a scenario. Every call is recorded for assertions.
type MockMarketClient struct {
	mu sync.Mutex

	Tenders    []types.Tender
	Securities []types.Security
	Books      map[string]*types.BookSnapshot
	OpenOrders []types.Order
	Case       *types.CaseStatus

	ListTendersErr   error
	AcceptTenderErr  error
	DeclineTenderErr error
	GetSecuritiesErr error
	GetBookErr       error
	SubmitOrderErr   error
	CancelOrderErr   error
	CancelAllErr     error
	GetOpenOrdersErr error
	GetCaseStatusErr error

	// SubmitOrderFn, when set, overrides the default submit behavior.
	SubmitOrderFn func(ctx context.Context, ticker string, orderType types.OrderType, quantity int, side types.Side, price float64) (*types.Order, error)
	// CancelOrderFn, when set, overrides the default cancel behavior.
	CancelOrderFn func(ctx context.Context, orderID int) error

	AcceptedTenderIDs []int
	DeclinedTenderIDs []int
	SubmittedOrders   []SubmittedOrder
	CancelledOrderIDs []int
	CancelAllCalls    []string
	ListTendersCalls  int
	GetOpenOrdersCall int

	nextOrderID int
}

// SubmittedOrder records a single SubmitOrder call.
type SubmittedOrder struct {
	Ticker   string
	Type     types.OrderType
	Quantity int
	Side     types.Side
	Price    float64
}

// NewMockMarketClient creates an empty scriptable client.
func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		Books:       make(map[string]*types.BookSnapshot),
		nextOrderID: 1000,
	}
}

func (m *MockMarketClient) ListTenders(_ context.Context) ([]types.Tender, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListTendersCalls++
	if m.ListTendersErr != nil {
		return nil, m.ListTendersErr
	}
	return append([]types.Tender(nil), m.Tenders...), nil
}

func (m *MockMarketClient) AcceptTender(_ context.Context, tenderID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AcceptTenderErr != nil {
		return m.AcceptTenderErr
	}
	m.AcceptedTenderIDs = append(m.AcceptedTenderIDs, tenderID)
	return nil
}

func (m *MockMarketClient) DeclineTender(_ context.Context, tenderID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeclineTenderErr != nil {
		return m.DeclineTenderErr
	}
	m.DeclinedTenderIDs = append(m.DeclinedTenderIDs, tenderID)
	return nil
}

func (m *MockMarketClient) GetSecurities(_ context.Context, ticker string) ([]types.Security, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSecuritiesErr != nil {
		return nil, m.GetSecuritiesErr
	}
	if ticker == "" {
		return append([]types.Security(nil), m.Securities...), nil
	}
	for _, sec := range m.Securities {
		if sec.Ticker == ticker {
			return []types.Security{sec}, nil
		}
	}
	return nil, nil
}

func (m *MockMarketClient) GetBook(_ context.Context, ticker string, _ int) (*types.BookSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetBookErr != nil {
		return nil, m.GetBookErr
	}
	if book, ok := m.Books[ticker]; ok {
		return book, nil
	}
	return &types.BookSnapshot{}, nil
}

func (m *MockMarketClient) SubmitOrder(ctx context.Context, ticker string, orderType types.OrderType, quantity int, side types.Side, price float64) (*types.Order, error) {
	if m.SubmitOrderFn != nil {
		order, err := m.SubmitOrderFn(ctx, ticker, orderType, quantity, side, price)
		if err == nil {
			m.recordSubmit(ticker, orderType, quantity, side, price)
		}
		return order, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SubmitOrderErr != nil {
		return nil, m.SubmitOrderErr
	}
	m.nextOrderID++
	m.SubmittedOrders = append(m.SubmittedOrders, SubmittedOrder{
		Ticker:   ticker,
		Type:     orderType,
		Quantity: quantity,
		Side:     side,
		Price:    price,
	})
	return &types.Order{
		OrderID:  m.nextOrderID,
		Ticker:   ticker,
		Type:     orderType,
		Quantity: quantity,
		Side:     side,
		Price:    price,
		Status:   types.OrderStatusOpen,
	}, nil
}

func (m *MockMarketClient) recordSubmit(ticker string, orderType types.OrderType, quantity int, side types.Side, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmittedOrders = append(m.SubmittedOrders, SubmittedOrder{
		Ticker:   ticker,
		Type:     orderType,
		Quantity: quantity,
		Side:     side,
		Price:    price,
	})
}

func (m *MockMarketClient) CancelOrder(ctx context.Context, orderID int) error {
	if m.CancelOrderFn != nil {
		return m.CancelOrderFn(ctx, orderID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CancelOrderErr != nil {
		return m.CancelOrderErr
	}
	m.CancelledOrderIDs = append(m.CancelledOrderIDs, orderID)
	return nil
}

func (m *MockMarketClient) CancelAllOrders(_ context.Context, ticker string) (*types.BulkCancelResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CancelAllErr != nil {
		return nil, m.CancelAllErr
	}
	m.CancelAllCalls = append(m.CancelAllCalls, ticker)
	return &types.BulkCancelResult{}, nil
}

func (m *MockMarketClient) GetOpenOrders(_ context.Context, _ types.OrderStatus) ([]types.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetOpenOrdersCall++
	if m.GetOpenOrdersErr != nil {
		return nil, m.GetOpenOrdersErr
	}
	return append([]types.Order(nil), m.OpenOrders...), nil
}

func (m *MockMarketClient) GetCaseStatus(_ context.Context) (*types.CaseStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetCaseStatusErr != nil {
		return nil, m.GetCaseStatusErr
	}
	if m.Case == nil {
		return &types.CaseStatus{Status: types.CaseStatusActive}, nil
	}
	caseCopy := *m.Case
	return &caseCopy, nil
}

// SubmittedMarketShares sums submitted market-order quantity for a ticker
// and side.
func (m *MockMarketClient) SubmittedMarketShares(ticker string, side types.Side) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, o := range m.SubmittedOrders {
		if o.Ticker == ticker && o.Side == side && o.Type == types.OrderTypeMarket {
			total += o.Quantity
		}
	}
	return total
}

// FakeClock is a manually advanced clock for deterministic tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock starts a fake clock at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the fake clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
