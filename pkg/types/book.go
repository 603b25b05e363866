package types

// BookLevel is a single price level in an order book.
type BookLevel struct {
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	QuantityFilled int     `json:"quantity_filled"`
}

// Remaining returns the unfilled quantity at this level.
func (l BookLevel) Remaining() int {
	r := l.Quantity - l.QuantityFilled
	if r < 0 {
		return 0
	}
	return r
}

// BookSnapshot is a point-in-time view of an order book. Bids are sorted
// high to low, asks low to high. Snapshots are read-only; a new decision
// always re-fetches a fresh one.
type BookSnapshot struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// BestBid returns the top bid level, if any.
func (b *BookSnapshot) BestBid() (BookLevel, bool) {
	if len(b.Bids) == 0 {
		return BookLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the top ask level, if any.
func (b *BookSnapshot) BestAsk() (BookLevel, bool) {
	if len(b.Asks) == 0 {
		return BookLevel{}, false
	}
	return b.Asks[0], true
}

// Spread returns best ask minus best bid. The second return is false when
// either side is empty.
func (b *BookSnapshot) Spread() (float64, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask.Price - bid.Price, true
}
