package evaluation

import (
	"fmt"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// CheckTradeSafety performs the pre-acceptance sanity gate on a fresh book
// snapshot. Failing the gate forces a decline regardless of the score.
func (e *Evaluator) CheckTradeSafety(book *types.BookSnapshot) (bool, string) {
	if len(book.Bids) < e.config.MinBookDepth {
		SafetyRejectionsTotal.WithLabelValues("insufficient_bid_depth").Inc()
		return false, "insufficient bid depth"
	}

	if len(book.Asks) < e.config.MinBookDepth {
		SafetyRejectionsTotal.WithLabelValues("insufficient_ask_depth").Inc()
		return false, "insufficient ask depth"
	}

	spread, ok := book.Spread()
	if !ok {
		SafetyRejectionsTotal.WithLabelValues("one_sided_book").Inc()
		return false, "one-sided book"
	}

	if spread < 0 {
		SafetyRejectionsTotal.WithLabelValues("crossed_book").Inc()
		return false, "crossed book detected"
	}

	if spread > e.config.MaxAcceptableSpread {
		SafetyRejectionsTotal.WithLabelValues("abnormal_spread").Inc()
		return false, fmt.Sprintf("abnormal spread (%.2f)", spread)
	}

	return true, "OK"
}
