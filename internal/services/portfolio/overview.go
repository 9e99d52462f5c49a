package portfolio

import (
	"context"
	"sync"

	"github.com/foliolab/folio/internal/models"
)

// symbolData holds everything fetched for one ticker. Any field may be
// nil when the provider chain could not resolve it; valuation degrades
// per field rather than failing the overview.
type symbolData struct {
	history *models.SymbolHistory
	quote   *models.Quote
	profile *models.Profile
}

// fetchSymbolData resolves history, quote and profile for each unique
// symbol concurrently. Provider failures are logged and recorded as
// gaps, never propagated: a dead provider must not take the dashboard
// down with it.
func (s *Service) fetchSymbolData(ctx context.Context, symbols []string) map[string]*symbolData {
	results := make(map[string]*symbolData, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			data := &symbolData{}

			history, err := s.history.Resolve(ctx, symbol)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("History unresolved")
			} else {
				data.history = history
			}

			quote, err := s.market.GetQuote(ctx, symbol)
			if err != nil {
				s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Quote unavailable")
			} else {
				data.quote = quote
			}

			profile, err := s.market.GetProfile(ctx, symbol)
			if err != nil {
				s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Profile unavailable")
			} else {
				data.profile = profile
			}

			mu.Lock()
			results[symbol] = data
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	return results
}

// Overview values every investor's holdings against current market
// data and returns the combined dashboard payload.
func (s *Service) Overview(ctx context.Context) (*models.PortfolioOverview, error) {
	doc, err := s.storage.PortfolioStore().GetDocument(ctx)
	if err != nil {
		return nil, err
	}

	symbols := doc.Symbols()
	data := s.fetchSymbolData(ctx, symbols)

	histories := make(map[string]*models.SymbolHistory, len(data))
	quotes := make(map[string]*models.Quote, len(data))
	profiles := make(map[string]*models.Profile, len(data))
	for symbol, d := range data {
		histories[symbol] = d.history
		quotes[symbol] = d.quote
		profiles[symbol] = d.profile
	}

	investors := s.engine.Valuate(doc.Investors, histories, quotes, profiles)

	return &models.PortfolioOverview{
		AsOf:      s.now().UnixMilli(),
		Investors: investors,
		Symbols:   symbols,
	}, nil
}
