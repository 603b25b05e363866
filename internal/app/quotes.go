package app

import (
	"time"

	"go.uber.org/zap"
)

// runQuoteRefresher keeps the operator quote cache warm for every ticker the
// bot is configured to trade. The trading path never reads from this cache;
// it exists so /api/quote and the CLI do not add venue round trips.
func (a *App) runQuoteRefresher() {
	defer a.wg.Done()

	interval := a.cfg.MonitorInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.refreshQuotes()
		}
	}
}

func (a *App) refreshQuotes() {
	securities, err := a.client.GetSecurities(a.ctx, "")
	if err != nil {
		a.logger.Debug("quote-refresh-securities-failed", zap.Error(err))
		return
	}

	for i := range securities {
		sec := securities[i]
		a.quotes.SetSecurity(&sec)

		book, err := a.client.GetBook(a.ctx, sec.Ticker, a.cfg.BookFetchDepth)
		if err != nil {
			a.logger.Debug("quote-refresh-book-failed",
				zap.String("ticker", sec.Ticker), zap.Error(err))
			continue
		}
		a.quotes.SetBook(sec.Ticker, book)
	}
}
