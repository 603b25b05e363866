package evaluation

import (
	"math"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// HasTopOfBookCoverage reports whether the volume resting at the best price
// on the unwind side covers the full tender quantity. Cheap first-glance
// check used by operator tooling; the full evaluation walks deeper.
func HasTopOfBookCoverage(tender *types.Tender, book *types.BookSnapshot) bool {
	levels := book.Bids
	if tender.Side == types.SideSell {
		levels = book.Asks
	}
	if len(levels) == 0 {
		return false
	}

	bestPrice := levels[0].Price
	total := 0
	for _, level := range levels {
		if level.Price != bestPrice {
			continue
		}
		total += level.Remaining()
	}

	return total >= tender.Quantity
}

// EstimateUnwindPnL estimates the profit of taking the tender and unwinding
// the whole quantity at the current best opposing quote, net of round-trip
// transaction costs. Returns -Inf when the unwind side is empty.
func EstimateUnwindPnL(tender *types.Tender, book *types.BookSnapshot, costPerShare float64) float64 {
	if tender.Side == types.SideBuy {
		best, ok := book.BestBid()
		if !ok {
			return math.Inf(-1)
		}
		return (best.Price - tender.Price - 2*costPerShare) * float64(tender.Quantity)
	}

	best, ok := book.BestAsk()
	if !ok {
		return math.Inf(-1)
	}
	return (tender.Price - best.Price - 2*costPerShare) * float64(tender.Quantity)
}
