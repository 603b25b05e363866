package types

// Security is a venue instrument with the caller's current position and P&L.
type Security struct {
	Ticker     string  `json:"ticker"`
	Type       string  `json:"type"`
	Size       int     `json:"size"` // signed position in shares
	Position   float64 `json:"position"`
	VWAP       float64 `json:"vwap"`
	NLV        float64 `json:"nlv"`
	Last       float64 `json:"last"`
	Bid        float64 `json:"bid"`
	BidSize    int     `json:"bid_size"`
	Ask        float64 `json:"ask"`
	AskSize    int     `json:"ask_size"`
	Volume     int     `json:"volume"`
	Unrealized float64 `json:"unrealized"`
	Realized   float64 `json:"realized"`
}

// Mid returns the quote midpoint, or 0 when either side is missing.
func (s *Security) Mid() float64 {
	if s.Bid <= 0 || s.Ask <= 0 {
		return 0
	}
	return (s.Bid + s.Ask) / 2
}
