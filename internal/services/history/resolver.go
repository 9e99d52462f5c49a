// Package history resolves price series through a provider fallback chain
package history

import (
	"context"
	"errors"
	"time"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
)

// fallbackWindows are the day ranges tried against the keyed provider,
// longest first. Shorter windows dodge per-range data limits on free
// API tiers.
var fallbackWindows = []int{450, 400, 365, 240, 120, 60}

// synthSpread is the backdating applied to the previous close when a
// two-point series is synthesized from a live quote.
const synthSpread = 7 * 24 * time.Hour

// Resolver implements HistoryResolver with Yahoo-primary and
// Finnhub-fallback. finnhub may be nil when no API key is configured;
// the keyed steps are skipped.
type Resolver struct {
	yahoo   interfaces.YahooClient
	finnhub interfaces.FinnhubClient
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewResolver creates a new history resolver.
func NewResolver(yahoo interfaces.YahooClient, finnhub interfaces.FinnhubClient, logger *common.Logger) *Resolver {
	return &Resolver{
		yahoo:   yahoo,
		finnhub: finnhub,
		logger:  logger,
		now:     time.Now,
	}
}

// Resolve walks the fallback chain for one symbol:
//  1. Yahoo one-year daily series (accept ≥2 points)
//  2. Finnhub daily candles over progressively shorter windows
//  3. Finnhub quote synthesized into a two-point series
//  4. HistoryUnavailableError, classified rate-limited vs not-found
//
// Transport errors at any step mean "this step failed", never a
// returned error: the result is always a series or the classification.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (*models.SymbolHistory, error) {
	rateLimited := false

	// Step 1: free primary provider
	if r.yahoo != nil {
		series, err := r.yahoo.GetDailyHistory(ctx, symbol)
		if err == nil && series != nil && len(series.Points) >= 2 {
			r.logger.Debug().
				Str("symbol", symbol).
				Str("provider", "yahoo").
				Int("points", len(series.Points)).
				Msg("History resolved")
			return series, nil
		}
		if noteRateLimit(err) {
			rateLimited = true
		}
		r.logger.Debug().Err(err).Str("symbol", symbol).Msg("Yahoo history unavailable, trying fallback")
	}

	if r.finnhub == nil {
		return nil, &models.HistoryUnavailableError{Symbol: symbol, RateLimited: rateLimited}
	}

	// Step 2: keyed provider over shrinking windows
	now := r.now()
	for _, days := range fallbackWindows {
		from := now.AddDate(0, 0, -days)
		series, err := r.finnhub.GetCandles(ctx, symbol, from, now)
		if err == nil && series != nil && len(series.Points) >= 2 {
			r.logger.Debug().
				Str("symbol", symbol).
				Str("provider", "finnhub").
				Int("window_days", days).
				Int("points", len(series.Points)).
				Msg("History resolved")
			return series, nil
		}
		if noteRateLimit(err) {
			rateLimited = true
		}
	}

	// Step 3: synthesize a two-point series from a live quote
	quote, err := r.finnhub.GetQuote(ctx, symbol)
	if err == nil && quote != nil && !quote.IsZero() && quote.Price > 0 && quote.PrevClose > 0 {
		r.logger.Debug().
			Str("symbol", symbol).
			Str("provider", "finnhub").
			Msg("History synthesized from quote")
		return &models.SymbolHistory{
			Symbol: symbol,
			Points: []models.PricePoint{
				{Time: now.Add(-synthSpread).Unix(), Close: quote.PrevClose},
				{Time: now.Unix(), Close: quote.Price},
			},
		}, nil
	}
	if noteRateLimit(err) {
		rateLimited = true
	}

	r.logger.Info().
		Str("symbol", symbol).
		Bool("rate_limited", rateLimited).
		Msg("History unresolved after all fallbacks")

	return nil, &models.HistoryUnavailableError{Symbol: symbol, RateLimited: rateLimited}
}

// noteRateLimit reports whether err is a provider throttling response.
func noteRateLimit(err error) bool {
	var pe *models.ProviderError
	if errors.As(err, &pe) {
		return pe.IsRateLimited()
	}
	return false
}

// Ensure Resolver implements HistoryResolver
var _ interfaces.HistoryResolver = (*Resolver)(nil)
