// Package valuation computes investor valuations from allocations and
// per-symbol market data
package valuation

import (
	"sort"

	"github.com/foliolab/folio/internal/models"
)

// Engine combines allocations with per-symbol histories, quotes, and
// profiles. It is deterministic given its inputs: no clock, no
// randomness, no hidden state.
type Engine struct{}

// NewEngine creates a valuation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Valuate produces one InvestorValuation per investor, in input order.
// Symbols missing from the maps degrade to unresolved fields; holdings
// with no resolvable price contribute their cost basis to aggregate
// totals.
func (e *Engine) Valuate(
	investors []models.Investor,
	histories map[string]*models.SymbolHistory,
	quotes map[string]*models.Quote,
	profiles map[string]*models.Profile,
) []models.InvestorValuation {
	out := make([]models.InvestorValuation, 0, len(investors))

	for i := range investors {
		inv := &investors[i]

		iv := models.InvestorValuation{
			Name:     inv.Name,
			Slug:     inv.Slug(),
			Holdings: make([]models.HoldingValuation, 0, len(inv.Allocations)),
		}

		merged := make(map[int64]float64)

		for _, alloc := range inv.Allocations {
			symbol := models.NormalizeSymbol(alloc.Symbol)
			hv := e.valuateHolding(alloc, symbol, histories[symbol], quotes[symbol], profiles[symbol])

			iv.TotalInvested += hv.AmountInvested
			if hv.CurrentValue != nil {
				iv.CurrentValue += *hv.CurrentValue
			} else {
				// No resolvable price: assume no change.
				iv.CurrentValue += hv.AmountInvested
			}

			for _, p := range hv.ValueHistory {
				merged[p.Time] += p.Value
			}

			iv.Holdings = append(iv.Holdings, hv)
		}

		iv.Change = iv.CurrentValue - iv.TotalInvested
		if iv.TotalInvested != 0 {
			iv.ChangePercent = models.Float64Ptr(iv.Change / iv.TotalInvested * 100)
		}
		iv.ValueHistory = sortedSeries(merged)

		out = append(out, iv)
	}

	return out
}

// valuateHolding derives the valuation view of one allocation.
func (e *Engine) valuateHolding(
	alloc models.Allocation,
	symbol string,
	history *models.SymbolHistory,
	quote *models.Quote,
	profile *models.Profile,
) models.HoldingValuation {
	hv := models.HoldingValuation{
		AllocationID:   alloc.ID,
		Symbol:         symbol,
		AmountInvested: alloc.AmountInvested,
		DateInvested:   alloc.DateInvested,
	}
	if profile != nil {
		hv.Name = profile.Name
	}

	startPrice := resolveStartPrice(alloc, history)
	hv.StartPrice = startPrice

	shares := resolveShares(alloc, startPrice)
	hv.Shares = shares

	currentPrice := resolveCurrentPrice(quote, history, startPrice)
	hv.CurrentPrice = currentPrice

	// Value, change, and change percent stay nil unless both shares
	// and a current price resolved. The aggregate path counts such
	// holdings at cost basis; the per-holding view reports only what
	// is known.
	if shares != nil && currentPrice != nil {
		hv.CurrentValue = models.Float64Ptr(*shares * *currentPrice)
		hv.Change = models.Float64Ptr(*hv.CurrentValue - alloc.AmountInvested)
		if alloc.AmountInvested != 0 {
			hv.ChangePercent = models.Float64Ptr(*hv.Change / alloc.AmountInvested * 100)
		}
	}

	if shares != nil && history != nil {
		hv.ValueHistory = make([]models.ValuePoint, 0, len(history.Points))
		for _, p := range history.Points {
			hv.ValueHistory = append(hv.ValueHistory, models.ValuePoint{
				Time:  p.Time,
				Value: p.Close * *shares,
			})
		}
	}

	return hv
}

// resolveStartPrice finds the price establishing the cost basis: the
// first history point at or after the purchase date, the earliest
// available point when the series starts later, or the price implied
// by the recorded amount and shares when history is empty.
func resolveStartPrice(alloc models.Allocation, history *models.SymbolHistory) *float64 {
	if p := history.FirstAtOrAfter(alloc.DateInvested); p != nil {
		return models.Float64Ptr(p.Close)
	}
	if alloc.AmountInvested > 0 && alloc.Shares > 0 {
		return models.Float64Ptr(alloc.AmountInvested / alloc.Shares)
	}
	return nil
}

// resolveShares uses the persisted share count when positive, otherwise
// derives it from the invested amount and start price.
func resolveShares(alloc models.Allocation, startPrice *float64) *float64 {
	if alloc.Shares > 0 {
		return models.Float64Ptr(alloc.Shares)
	}
	if startPrice != nil && *startPrice > 0 && alloc.AmountInvested > 0 {
		return models.Float64Ptr(alloc.AmountInvested / *startPrice)
	}
	return nil
}

// resolveCurrentPrice prefers the live quote, then the most recent
// history point, then the start price.
func resolveCurrentPrice(quote *models.Quote, history *models.SymbolHistory, startPrice *float64) *float64 {
	if quote != nil && quote.Price > 0 {
		return models.Float64Ptr(quote.Price)
	}
	if p := history.Latest(); p != nil {
		return models.Float64Ptr(p.Close)
	}
	return startPrice
}

// sortedSeries converts a timestamp-keyed sum into an ascending series.
// Points are summed by exact timestamp match only; timestamps unique to
// one holding appear alone, with no interpolation across grids.
func sortedSeries(merged map[int64]float64) []models.ValuePoint {
	if len(merged) == 0 {
		return nil
	}
	series := make([]models.ValuePoint, 0, len(merged))
	for t, v := range merged {
		series = append(series, models.ValuePoint{Time: t, Value: v})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Time < series[j].Time })
	return series
}
