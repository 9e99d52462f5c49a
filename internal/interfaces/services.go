package interfaces

import (
	"context"

	"github.com/foliolab/folio/internal/models"
)

// HistoryResolver resolves a price series for a symbol through the
// provider fallback chain. It never returns transport errors: the error
// is always nil or a *models.HistoryUnavailableError classification.
type HistoryResolver interface {
	Resolve(ctx context.Context, symbol string) (*models.SymbolHistory, error)
}

// MarketService provides normalized quote, profile, and search access.
// All methods report missing data as models.ErrNoData; callers treat
// outputs as optional.
type MarketService interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetProfile(ctx context.Context, symbol string) (*models.Profile, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// AllocationInput carries admin-supplied allocation fields.
type AllocationInput struct {
	ID             string  `json:"id,omitempty"`
	Symbol         string  `json:"symbol"`
	AmountInvested float64 `json:"amount_invested"`
	Shares         float64 `json:"shares,omitempty"`
	DateInvested   string  `json:"date_invested"` // RFC3339 or YYYY-MM-DD
}

// PortfolioService is the orchestration layer: reads combine the stored
// document with live market data; writes mutate the document behind the
// admin gate.
type PortfolioService interface {
	Overview(ctx context.Context) (*models.PortfolioOverview, error)
	InvestorChart(ctx context.Context, slug string) ([]byte, error)

	CreateInvestor(ctx context.Context, name string) (*models.Investor, error)
	RenameInvestor(ctx context.Context, slug, newName string) (*models.Investor, error)
	DeleteInvestor(ctx context.Context, slug string) error

	AddAllocation(ctx context.Context, slug string, input AllocationInput) (*models.Allocation, error)
	UpdateAllocation(ctx context.Context, slug string, input AllocationInput) (*models.Allocation, error)
	DeleteAllocation(ctx context.Context, slug, allocationID string) error
}
