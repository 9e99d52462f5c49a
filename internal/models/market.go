package models

import "time"

// Quote is a normalized real-time quote for a single symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PrevClose     float64   `json:"prev_close"`
	Timestamp     time.Time `json:"timestamp"`
}

// IsZero reports the provider convention for an unknown symbol: price,
// previous close, and timestamp all zero. Such a response is "no data",
// not a $0 quote.
func (q *Quote) IsZero() bool {
	return q.Price == 0 && q.PrevClose == 0 && q.Timestamp.IsZero()
}

// PricePoint is one (time, close) sample in a symbol's price series.
type PricePoint struct {
	Time  int64   `json:"time"` // unix seconds
	Close float64 `json:"close"`
}

// SymbolHistory is an ascending daily close series for one symbol.
// Fetched fresh per valuation request, never persisted.
type SymbolHistory struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Latest returns the most recent point, or nil for an empty series.
func (h *SymbolHistory) Latest() *PricePoint {
	if h == nil || len(h.Points) == 0 {
		return nil
	}
	return &h.Points[len(h.Points)-1]
}

// FirstAtOrAfter returns the first point at or after t, falling back to
// the earliest point when the whole series predates t.
func (h *SymbolHistory) FirstAtOrAfter(t time.Time) *PricePoint {
	if h == nil || len(h.Points) == 0 {
		return nil
	}
	unix := t.Unix()
	for i := range h.Points {
		if h.Points[i].Time >= unix {
			return &h.Points[i]
		}
	}
	return &h.Points[0]
}

// Profile holds descriptive company data for a symbol.
type Profile struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"`
	Exchange  string  `json:"exchange,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	Industry  string  `json:"industry,omitempty"`
	WebURL    string  `json:"weburl,omitempty"`
	Logo      string  `json:"logo,omitempty"`
	MarketCap float64 `json:"market_cap,omitempty"`
}

// IsEmpty reports the provider convention for "no profile": neither a
// display name nor a ticker in the response.
func (p *Profile) IsEmpty() bool {
	return p.Name == "" && p.Ticker == ""
}

// SearchResult is one instrument match from symbol search.
type SearchResult struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type"`
}
