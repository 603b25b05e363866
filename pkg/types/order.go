package types

// Order is a venue order as returned by the trading API.
type Order struct {
	OrderID        int         `json:"order_id"`
	Period         int         `json:"period"`
	Tick           int         `json:"tick"`
	Ticker         string      `json:"ticker"`
	Type           OrderType   `json:"type"`
	Quantity       int         `json:"quantity"`
	Side           Side        `json:"action"`
	Price          float64     `json:"price"`
	QuantityFilled int         `json:"quantity_filled"`
	VWAP           float64     `json:"vwap"`
	Status         OrderStatus `json:"status"`
}

// Remaining returns the unfilled quantity of the order.
func (o *Order) Remaining() int {
	r := o.Quantity - o.QuantityFilled
	if r < 0 {
		return 0
	}
	return r
}

// CancelResult is the venue acknowledgement of a single-order cancel.
type CancelResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// BulkCancelResult is the venue acknowledgement of a cancel-all request.
type BulkCancelResult struct {
	CancelledOrderIDs []int `json:"cancelled_order_ids"`
}
