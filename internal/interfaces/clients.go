// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"
	"time"

	"github.com/foliolab/folio/internal/models"
)

// YahooClient is the free, no-key daily-candle provider.
type YahooClient interface {
	// GetDailyHistory returns a one-year ascending daily close series,
	// preferring adjusted close when the provider supplies it.
	GetDailyHistory(ctx context.Context, symbol string) (*models.SymbolHistory, error)
}

// FinnhubClient is the keyed secondary market-data provider.
type FinnhubClient interface {
	// GetQuote returns the current quote for a symbol. A quote where
	// price, previous close, and timestamp are all zero means the
	// provider does not know the symbol.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetCandles returns daily candles between from and to, ascending.
	GetCandles(ctx context.Context, symbol string, from, to time.Time) (*models.SymbolHistory, error)

	// GetProfile returns company profile data for a symbol.
	GetProfile(ctx context.Context, symbol string) (*models.Profile, error)

	// Search queries instruments by free text.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}
