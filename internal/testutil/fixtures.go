package testutil

import (
	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// Logger returns a no-op logger for tests.
func Logger() *zap.Logger {
	return zap.NewNop()
}

// BuyTender builds a BUY tender for the given ticker.
func BuyTender(id int, ticker string, quantity int, price float64) types.Tender {
	return types.Tender{
		TenderID: id,
		Ticker:   ticker,
		Quantity: quantity,
		Side:     types.SideBuy,
		Price:    price,
		Expires:  300,
	}
}

// SellTender builds a SELL tender for the given ticker.
func SellTender(id int, ticker string, quantity int, price float64) types.Tender {
	t := BuyTender(id, ticker, quantity, price)
	t.Side = types.SideSell
	return t
}

// Book builds a snapshot from (price, quantity) pairs. Bids should be passed
// high to low and asks low to high, matching venue ordering.
func Book(bids, asks [][2]float64) *types.BookSnapshot {
	book := &types.BookSnapshot{}
	for _, level := range bids {
		book.Bids = append(book.Bids, types.BookLevel{Price: level[0], Quantity: int(level[1])})
	}
	for _, level := range asks {
		book.Asks = append(book.Asks, types.BookLevel{Price: level[0], Quantity: int(level[1])})
	}
	return book
}

// BalancedBook builds a deep symmetric book around a mid price, useful when
// a test needs liquidity but does not care about exact levels.
func BalancedBook(mid, tick float64, levels, qtyPerLevel int) *types.BookSnapshot {
	book := &types.BookSnapshot{}
	half := tick / 2
	for i := 0; i < levels; i++ {
		book.Bids = append(book.Bids, types.BookLevel{
			Price:    mid - half - tick*float64(i),
			Quantity: qtyPerLevel,
		})
		book.Asks = append(book.Asks, types.BookLevel{
			Price:    mid + half + tick*float64(i),
			Quantity: qtyPerLevel,
		})
	}
	return book
}

// Position builds a security row with a signed position size.
func Position(ticker string, size int, unrealized float64) types.Security {
	return types.Security{
		Ticker:     ticker,
		Size:       size,
		Unrealized: unrealized,
		Bid:        49.95,
		Ask:        50.05,
		Last:       50.00,
	}
}
