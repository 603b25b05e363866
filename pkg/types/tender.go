package types

// Tender is a time-boxed offer to trade a fixed quantity at a fixed price.
// It must be accepted or declined before the expiry tick. Tenders are
// immutable once received; identity is TenderID.
type Tender struct {
	TenderID int     `json:"tender_id"`
	Period   int     `json:"period"`
	Tick     int     `json:"tick"`
	Expires  int     `json:"expires"`
	Caption  string  `json:"caption"`
	Quantity int     `json:"quantity"`
	Side     Side    `json:"action"`
	Price    float64 `json:"price"`
	Ticker   string  `json:"ticker"`
}
