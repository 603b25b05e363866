package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/mselser95/rit-tender-bot/internal/planner"
	"github.com/mselser95/rit-tender-bot/internal/testutil"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

func TestEmergencyLiquidationFlattensAllPositions(t *testing.T) {
	client := testutil.NewMockMarketClient()
	client.Securities = []types.Security{
		testutil.Position("CRZY", 12000, 0),
		testutil.Position("TAME", -3000, 0),
		testutil.Position("CALM", 0, 0),
	}
	mgr := newTestManager(client, testutil.NewFakeClock(time.Now()))

	if err := mgr.EmergencyLiquidation(context.Background()); err != nil {
		t.Fatalf("EmergencyLiquidation: %v", err)
	}

	if len(client.CancelAllCalls) != 1 || client.CancelAllCalls[0] != "" {
		t.Errorf("cancel-all calls = %v, want one global cancel", client.CancelAllCalls)
	}
	if got := client.SubmittedMarketShares("CRZY", types.SideSell); got != 12000 {
		t.Errorf("CRZY SELL shares = %d, want 12000", got)
	}
	if got := client.SubmittedMarketShares("TAME", types.SideBuy); got != 3000 {
		t.Errorf("TAME BUY shares = %d, want 3000", got)
	}
	if got := client.SubmittedMarketShares("CALM", types.SideSell) + client.SubmittedMarketShares("CALM", types.SideBuy); got != 0 {
		t.Errorf("CALM shares = %d, want 0 for a flat position", got)
	}
}

func TestEmergencyLiquidationSplitsByOrderLimit(t *testing.T) {
	client := testutil.NewMockMarketClient()
	client.Securities = []types.Security{testutil.Position("TAME", 25000, 0)}
	mgr := newTestManager(client, testutil.NewFakeClock(time.Now()))

	if err := mgr.EmergencyLiquidation(context.Background()); err != nil {
		t.Fatalf("EmergencyLiquidation: %v", err)
	}

	if len(client.SubmittedOrders) != 3 {
		t.Fatalf("orders = %d, want 3 chunks at limit 10000", len(client.SubmittedOrders))
	}
	if got := client.SubmittedMarketShares("TAME", types.SideSell); got != 25000 {
		t.Errorf("TAME SELL shares = %d, want 25000", got)
	}
}

func TestEmergencyLiquidationIsIdempotent(t *testing.T) {
	client := testutil.NewMockMarketClient()
	client.Securities = []types.Security{testutil.Position("CRZY", 12000, 0)}
	mgr := newTestManager(client, testutil.NewFakeClock(time.Now()))

	if err := mgr.EmergencyLiquidation(context.Background()); err != nil {
		t.Fatalf("first liquidation: %v", err)
	}
	firstCount := len(client.SubmittedOrders)

	// Venue now reports flat; a second invocation must place nothing.
	client.Securities = []types.Security{testutil.Position("CRZY", 0, 0)}
	if err := mgr.EmergencyLiquidation(context.Background()); err != nil {
		t.Fatalf("second liquidation: %v", err)
	}

	if len(client.SubmittedOrders) != firstCount {
		t.Errorf("orders after second run = %d, want %d (no new orders)", len(client.SubmittedOrders), firstCount)
	}
}

func TestEmergencyLiquidationDropsTrackedOrders(t *testing.T) {
	client := testutil.NewMockMarketClient()
	client.Books["CRZY"] = testutil.Book(
		[][2]float64{{50.00, 20000}},
		[][2]float64{{50.05, 20000}},
	)
	mgr := newTestManager(client, testutil.NewFakeClock(time.Now()))

	plan := planner.Plan{Ticker: "CRZY", Direction: types.SideSell, Tier2Qty: 5000}
	mgr.SubmitPlan(context.Background(), plan, 4*time.Minute)
	if got := len(mgr.TrackedOrders()); got != 1 {
		t.Fatalf("tracked before = %d, want 1", got)
	}

	if err := mgr.EmergencyLiquidation(context.Background()); err != nil {
		t.Fatalf("EmergencyLiquidation: %v", err)
	}

	if got := len(mgr.TrackedOrders()); got != 0 {
		t.Errorf("tracked after = %d, want 0", got)
	}
}
