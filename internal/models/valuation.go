package models

import "time"

// ValuePoint is one (time, value) sample in a holding or investor value
// series. Time is unix seconds.
type ValuePoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// HoldingValuation is the derived valuation view of a single allocation.
// Pointer fields are nil when the underlying value could not be resolved
// (missing price data), so they render as JSON null and the UI can
// degrade per field.
type HoldingValuation struct {
	AllocationID   string       `json:"allocation_id"`
	Symbol         string       `json:"symbol"`
	Name           string       `json:"name,omitempty"`
	AmountInvested float64      `json:"amount_invested"`
	DateInvested   time.Time    `json:"date_invested"`
	StartPrice     *float64     `json:"start_price"`
	CurrentPrice   *float64     `json:"current_price"`
	Shares         *float64     `json:"shares"`
	CurrentValue   *float64     `json:"current_value"`
	Change         *float64     `json:"change"`
	ChangePercent  *float64     `json:"change_percent"`
	ValueHistory   []ValuePoint `json:"value_history,omitempty"`
}

// InvestorValuation aggregates the holding valuations of one investor.
type InvestorValuation struct {
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	TotalInvested float64            `json:"total_invested"`
	CurrentValue  float64            `json:"current_value"`
	Change        float64            `json:"change"`
	ChangePercent *float64           `json:"change_percent"`
	Holdings      []HoldingValuation `json:"holdings"`
	ValueHistory  []ValuePoint       `json:"value_history"`
}

// PortfolioOverview is the response body for the dashboard read path.
type PortfolioOverview struct {
	AsOf      int64               `json:"as_of"` // epoch milliseconds
	Investors []InvestorValuation `json:"investors"`
	Symbols   []string            `json:"symbols"`
}

// Float64Ptr returns a pointer to v. Convenience for valuation fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
