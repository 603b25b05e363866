package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/mselser95/rit-tender-bot/internal/lifecycle"
	"github.com/mselser95/rit-tender-bot/internal/planner"
	"github.com/mselser95/rit-tender-bot/internal/testutil"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

func newTestManager(client *testutil.MockMarketClient, clock *testutil.FakeClock) *lifecycle.Manager {
	return lifecycle.New(lifecycle.Config{
		Client:                 client,
		Clock:                  clock,
		Logger:                 testutil.Logger(),
		DefaultOrderLimit:      10000,
		OrderLimits:            map[string]int{"CRZY": 25000, "TAME": 10000},
		TickSize:               0.01,
		CaseDuration:           5 * time.Minute,
		NetPositionLimit:       100000,
		PatienceUrgent:         5 * time.Second,
		PatienceModerate:       15 * time.Second,
		PatienceRelaxed:        30 * time.Second,
		Tier3TimeFloor:         60 * time.Second,
		BookFetchDepth:         10,
		StopLossThreshold:      -5000,
		LargePositionThreshold: 80000,
	})
}

func TestSubmitPlanPatientTiers(t *testing.T) {
	client := testutil.NewMockMarketClient()
	client.Books["CRZY"] = testutil.Book(
		[][2]float64{{50.00, 20000}},
		[][2]float64{{50.05, 20000}},
	)
	mgr := newTestManager(client, testutil.NewFakeClock(time.Now()))

	plan := planner.Plan{
		Ticker:        "CRZY",
		TotalQuantity: 10000,
		Direction:     types.SideSell,
		Strategy:      planner.StrategyPatient,
		Tier1Qty:      2500,
		Tier2Qty:      5000,
		Tier3Qty:      2500,
	}

	result := mgr.SubmitPlan(context.Background(), plan, 4*time.Minute)

	if result.MarketSubmitted != 2500 {
		t.Errorf("market shares = %d, want 2500", result.MarketSubmitted)
	}
	if result.RestingSubmitted != 7500 {
		t.Errorf("resting shares = %d, want 7500", result.RestingSubmitted)
	}
	if result.FailedQuantity != 0 {
		t.Errorf("failed shares = %d, want 0", result.FailedQuantity)
	}

	var tier2, tier3 testutil.SubmittedOrder
	for _, order := range client.SubmittedOrders {
		if order.Type != types.OrderTypeLimit {
			continue
		}
		if order.Quantity == 5000 {
			tier2 = order
		}
		if order.Quantity == 2500 {
			tier3 = order
		}
	}

	if tier2.Price != 50.00 {
		t.Errorf("tier2 price = %.2f, want 50.00 (best bid)", tier2.Price)
	}
	if tier3.Price <= 50.00 || tier3.Price >= 50.05 {
		t.Errorf("tier3 price = %.3f, want inside the spread for price improvement", tier3.Price)
	}

	if got := len(mgr.TrackedOrders()); got != 2 {
		t.Errorf("tracked orders = %d, want 2", got)
	}
}

func TestSubmitPlanFoldsTier3NearSessionEnd(t *testing.T) {
	client := testutil.NewMockMarketClient()
	client.Books["CRZY"] = testutil.Book(
		[][2]float64{{50.00, 20000}},
		[][2]float64{{50.05, 20000}},
	)
	mgr := newTestManager(client, testutil.NewFakeClock(time.Now()))

	plan := planner.Plan{
		Ticker:    "CRZY",
		Direction: types.SideSell,
		Tier2Qty:  1000,
		Tier3Qty:  1000,
	}

	mgr.SubmitPlan(context.Background(), plan, 30*time.Second)

	// All 2000 shares rest at the best bid; nothing priced inside the spread.
	for _, order := range client.SubmittedOrders {
		if order.Price != 50.00 {
			t.Errorf("order priced at %.3f, want all at 50.00 with tier 3 folded", order.Price)
		}
	}
	total := 0
	for _, order := range client.SubmittedOrders {
		total += order.Quantity
	}
	if total != 2000 {
		t.Errorf("submitted shares = %d, want 2000", total)
	}
}

func TestSubmitPlanMarketChunksRespectOrderLimit(t *testing.T) {
	client := testutil.NewMockMarketClient()
	mgr := newTestManager(client, testutil.NewFakeClock(time.Now()))

	plan := planner.Plan{
		Ticker:    "TAME",
		Direction: types.SideBuy,
		Tier1Qty:  25000,
	}

	mgr.SubmitPlan(context.Background(), plan, 4*time.Minute)

	if len(client.SubmittedOrders) != 3 {
		t.Fatalf("orders = %d, want 3 chunks for 25000 at limit 10000", len(client.SubmittedOrders))
	}
	want := []int{10000, 10000, 5000}
	for i, order := range client.SubmittedOrders {
		if order.Quantity != want[i] {
			t.Errorf("chunk %d quantity = %d, want %d", i, order.Quantity, want[i])
		}
		if order.Type != types.OrderTypeMarket {
			t.Errorf("chunk %d type = %s, want MARKET", i, order.Type)
		}
	}
}

func TestSubmitPlanSplitsRestingOrdersEvenly(t *testing.T) {
	client := testutil.NewMockMarketClient()
	client.Books["TAME"] = testutil.Book(
		[][2]float64{{24.90, 50000}},
		[][2]float64{{25.10, 50000}},
	)
	mgr := newTestManager(client, testutil.NewFakeClock(time.Now()))

	plan := planner.Plan{
		Ticker:    "TAME",
		Direction: types.SideSell,
		Tier2Qty:  25000,
	}

	mgr.SubmitPlan(context.Background(), plan, 4*time.Minute)

	if len(client.SubmittedOrders) != 3 {
		t.Fatalf("orders = %d, want 3 for 25000 at limit 10000", len(client.SubmittedOrders))
	}
	want := []int{8334, 8333, 8333}
	for i, order := range client.SubmittedOrders {
		if order.Quantity != want[i] {
			t.Errorf("split %d quantity = %d, want %d", i, order.Quantity, want[i])
		}
	}
}

func TestSubmitPlanTier2FallsBackToMarketWithoutQuote(t *testing.T) {
	client := testutil.NewMockMarketClient()
	// Empty book: no opposing quote for a SELL.
	mgr := newTestManager(client, testutil.NewFakeClock(time.Now()))

	plan := planner.Plan{
		Ticker:    "CRZY",
		Direction: types.SideSell,
		Tier2Qty:  3000,
	}

	result := mgr.SubmitPlan(context.Background(), plan, 4*time.Minute)

	if result.MarketSubmitted != 3000 {
		t.Errorf("market shares = %d, want 3000 after fallback", result.MarketSubmitted)
	}
	if result.RestingSubmitted != 0 {
		t.Errorf("resting shares = %d, want 0", result.RestingSubmitted)
	}
}
