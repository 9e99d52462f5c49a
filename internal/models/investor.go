// Package models defines data structures for Folio
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Allocation is one purchase record (symbol, amount, shares, date)
// belonging to an investor.
type Allocation struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	AmountInvested float64   `json:"amount_invested"`
	Shares         float64   `json:"shares"` // 0 means derive from amount / start price
	DateInvested   time.Time `json:"date_invested"`
}

// Validate checks an allocation for persistence. Either an invested
// amount or an explicit share count must be present.
func (a *Allocation) Validate() error {
	if strings.TrimSpace(a.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if a.AmountInvested < 0 {
		return fmt.Errorf("amount_invested must not be negative")
	}
	if a.Shares < 0 {
		return fmt.Errorf("shares must not be negative")
	}
	if a.AmountInvested == 0 && a.Shares == 0 {
		return fmt.Errorf("either amount_invested or shares must be provided")
	}
	return nil
}

// NormalizeSymbol uppercases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Investor holds a named set of allocations.
type Investor struct {
	Name        string       `json:"name"`
	Allocations []Allocation `json:"allocations"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Slug returns the URL-safe identifier derived from the investor name:
// lowercased, with whitespace runs collapsed to single hyphens.
func (i *Investor) Slug() string {
	return Slugify(i.Name)
}

// Slugify derives a slug from an investor name. "Ada Lovelace" becomes
// "ada-lovelace"; punctuation is preserved.
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// FindAllocation returns the allocation with the given ID, or nil.
func (i *Investor) FindAllocation(id string) *Allocation {
	for idx := range i.Allocations {
		if i.Allocations[idx].ID == id {
			return &i.Allocations[idx]
		}
	}
	return nil
}

// RemoveAllocation deletes the allocation with the given ID.
// Returns false when no allocation matched.
func (i *Investor) RemoveAllocation(id string) bool {
	for idx := range i.Allocations {
		if i.Allocations[idx].ID == id {
			i.Allocations = append(i.Allocations[:idx], i.Allocations[idx+1:]...)
			return true
		}
	}
	return false
}

// PortfolioDocument is the single persisted document: all investors and
// their allocations, plus a version counter for compare-and-set writes.
type PortfolioDocument struct {
	Version   int64      `json:"version"`
	Investors []Investor `json:"investors"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FindInvestor returns the investor whose slug matches, or nil.
func (d *PortfolioDocument) FindInvestor(slug string) *Investor {
	for idx := range d.Investors {
		if d.Investors[idx].Slug() == slug {
			return &d.Investors[idx]
		}
	}
	return nil
}

// HasName reports whether an investor with the given name exists,
// compared case-insensitively. exceptSlug excludes one investor from
// the check (used when renaming).
func (d *PortfolioDocument) HasName(name, exceptSlug string) bool {
	for idx := range d.Investors {
		if exceptSlug != "" && d.Investors[idx].Slug() == exceptSlug {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(d.Investors[idx].Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// Symbols returns the sorted unique set of symbols across all investors.
func (d *PortfolioDocument) Symbols() []string {
	seen := make(map[string]bool)
	var symbols []string
	for i := range d.Investors {
		for _, a := range d.Investors[i].Allocations {
			sym := NormalizeSymbol(a.Symbol)
			if sym == "" || seen[sym] {
				continue
			}
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)
	return symbols
}
