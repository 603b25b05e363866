package types

// CaseStatusActive is the venue status for a running trading session.
const CaseStatusActive = "ACTIVE"

// CaseStatus describes the state of the trading session.
type CaseStatus struct {
	Name           string `json:"name"`
	Period         int    `json:"period"`
	Tick           int    `json:"tick"`
	TicksPerPeriod int    `json:"ticks_per_period"`
	TotalPeriods   int    `json:"total_periods"`
	Status         string `json:"status"`
}

// Active reports whether the session accepts trading activity.
func (c *CaseStatus) Active() bool {
	return c.Status == CaseStatusActive
}
