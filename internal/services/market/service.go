// Package market provides normalized quote, profile, and search access
package market

import (
	"context"
	"strings"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
)

// maxSearchResults caps the number of search matches returned.
const maxSearchResults = 8

// Service implements MarketService on top of the keyed provider.
// finnhub may be nil when no API key is configured; every call then
// reports ErrNoData.
type Service struct {
	finnhub interfaces.FinnhubClient
	logger  *common.Logger
}

// NewService creates a new market service.
func NewService(finnhub interfaces.FinnhubClient, logger *common.Logger) *Service {
	return &Service{
		finnhub: finnhub,
		logger:  logger,
	}
}

// GetQuote returns the live quote for a symbol. A provider response
// with zero price, previous close, and timestamp is the provider's
// convention for an unknown symbol and reports ErrNoData, not a $0
// quote.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.finnhub == nil {
		return nil, models.ErrNoData
	}

	quote, err := s.finnhub.GetQuote(ctx, symbol)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Quote fetch failed")
		return nil, err
	}
	if quote == nil || quote.IsZero() {
		return nil, models.ErrNoData
	}

	return quote, nil
}

// GetProfile returns company profile data. A response with neither a
// name nor a ticker means the provider has no profile for the symbol.
func (s *Service) GetProfile(ctx context.Context, symbol string) (*models.Profile, error) {
	if s.finnhub == nil {
		return nil, models.ErrNoData
	}

	profile, err := s.finnhub.GetProfile(ctx, symbol)
	if err != nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Profile fetch failed")
		return nil, err
	}
	if profile == nil || profile.IsEmpty() {
		return nil, models.ErrNoData
	}

	return profile, nil
}

// Search queries instruments by free text. Results are filtered to
// plain equity-like symbols (no '.', ':' or '/' separators), deduped
// by symbol, and capped at 8, preserving provider-ranked order.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if s.finnhub == nil {
		return nil, models.ErrNoData
	}

	raw, err := s.finnhub.Search(ctx, query)
	if err != nil {
		s.logger.Debug().Err(err).Str("query", query).Msg("Search failed")
		return nil, err
	}

	seen := make(map[string]bool)
	results := make([]models.SearchResult, 0, maxSearchResults)
	for _, r := range raw {
		if strings.ContainsAny(r.Symbol, ".:/") {
			continue
		}
		if seen[r.Symbol] {
			continue
		}
		seen[r.Symbol] = true
		results = append(results, r)
		if len(results) >= maxSearchResults {
			break
		}
	}

	return results, nil
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
