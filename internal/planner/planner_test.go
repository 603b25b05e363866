package planner

import (
	"testing"

	"github.com/mselser95/rit-tender-bot/internal/testutil"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

func TestStrategyForScore(t *testing.T) {
	tests := []struct {
		name      string
		composite float64
		want      Strategy
	}{
		{"well-above-patient", 95, StrategyPatient},
		{"patient-boundary", 80, StrategyPatient},
		{"just-below-patient", 79.9, StrategyBalanced},
		{"balanced-boundary", 60, StrategyBalanced},
		{"just-below-balanced", 59.9, StrategyAggressive},
		{"low-score", 20, StrategyAggressive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StrategyForScore(tt.composite); got != tt.want {
				t.Errorf("StrategyForScore(%v) = %s, want %s", tt.composite, got, tt.want)
			}
		})
	}
}

func TestPlanTierSizes(t *testing.T) {
	p := New(testutil.Logger())

	tests := []struct {
		name      string
		quantity  int
		composite float64
		tier1     int
		tier2     int
		tier3     int
	}{
		{"patient-clean-split", 10000, 82, 2500, 5000, 2500},
		{"balanced", 10000, 65, 4000, 4500, 1500},
		{"aggressive", 10000, 35, 6000, 3500, 500},
		{"rounding-remainder-to-tier3", 10001, 82, 2500, 5000, 2501},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := p.Plan("CRZY", tt.quantity, types.SideBuy, tt.composite)

			if plan.Tier1Qty != tt.tier1 || plan.Tier2Qty != tt.tier2 || plan.Tier3Qty != tt.tier3 {
				t.Errorf("tiers = %d/%d/%d, want %d/%d/%d",
					plan.Tier1Qty, plan.Tier2Qty, plan.Tier3Qty, tt.tier1, tt.tier2, tt.tier3)
			}
			if sum := plan.Tier1Qty + plan.Tier2Qty + plan.Tier3Qty; sum != tt.quantity {
				t.Errorf("tier sum = %d, want exactly %d", sum, tt.quantity)
			}
		})
	}
}

func TestPlanConservesOddQuantities(t *testing.T) {
	p := New(testutil.Logger())

	for _, quantity := range []int{1, 3, 7, 99, 12345, 99999} {
		for _, composite := range []float64{90, 70, 30} {
			plan := p.Plan("TAME", quantity, types.SideSell, composite)
			if sum := plan.Tier1Qty + plan.Tier2Qty + plan.Tier3Qty; sum != quantity {
				t.Errorf("qty %d score %v: tier sum = %d", quantity, composite, sum)
			}
		}
	}
}

func TestPlanDirectionOpposesTender(t *testing.T) {
	p := New(testutil.Logger())

	if plan := p.Plan("CRZY", 1000, types.SideBuy, 82); plan.Direction != types.SideSell {
		t.Errorf("direction for a BUY tender = %s, want SELL", plan.Direction)
	}
	if plan := p.Plan("CRZY", 1000, types.SideSell, 82); plan.Direction != types.SideBuy {
		t.Errorf("direction for a SELL tender = %s, want BUY", plan.Direction)
	}
}
