// Package portfolio orchestrates stored allocations and live market data
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
	"github.com/foliolab/folio/internal/services/valuation"
)

// Service implements PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	history interfaces.HistoryResolver
	market  interfaces.MarketService
	engine  *valuation.Engine
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new portfolio service.
func NewService(
	storage interfaces.StorageManager,
	history interfaces.HistoryResolver,
	market interfaces.MarketService,
	logger *common.Logger,
) *Service {
	return &Service{
		storage: storage,
		history: history,
		market:  market,
		engine:  valuation.NewEngine(),
		logger:  logger,
		now:     time.Now,
	}
}

// mutate runs fn against the current document and saves it with the
// version that was read. A concurrent writer triggers one re-read and
// retry before the conflict is surfaced.
func (s *Service) mutate(ctx context.Context, fn func(doc *models.PortfolioDocument) error) error {
	store := s.storage.PortfolioStore()

	for attempt := 0; attempt < 2; attempt++ {
		doc, err := store.GetDocument(ctx)
		if err != nil {
			return fmt.Errorf("failed to load portfolio document: %w", err)
		}

		if err := fn(doc); err != nil {
			return err
		}

		doc.UpdatedAt = s.now()
		err = store.SaveDocument(ctx, doc, doc.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return fmt.Errorf("failed to save portfolio document: %w", err)
		}
		s.logger.Warn().Int("attempt", attempt+1).Msg("Portfolio document version moved, retrying")
	}

	return models.ErrVersionConflict
}

// CreateInvestor adds a new investor with an empty allocation list.
// The name must be unique case-insensitively.
func (s *Service) CreateInvestor(ctx context.Context, name string) (*models.Investor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("investor name is required")
	}

	var created *models.Investor
	err := s.mutate(ctx, func(doc *models.PortfolioDocument) error {
		if doc.HasName(name, "") {
			return models.ErrDuplicateInvestor
		}
		now := s.now()
		doc.Investors = append(doc.Investors, models.Investor{
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		})
		created = &doc.Investors[len(doc.Investors)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("name", name).Str("slug", created.Slug()).Msg("Investor created")
	return created, nil
}

// RenameInvestor changes an investor's name, recomputing its slug.
func (s *Service) RenameInvestor(ctx context.Context, slug, newName string) (*models.Investor, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, models.NewValidationError("investor name is required")
	}

	var renamed *models.Investor
	err := s.mutate(ctx, func(doc *models.PortfolioDocument) error {
		inv := doc.FindInvestor(slug)
		if inv == nil {
			return models.ErrInvestorNotFound
		}
		if doc.HasName(newName, slug) {
			return models.ErrDuplicateInvestor
		}
		inv.Name = newName
		inv.UpdatedAt = s.now()
		renamed = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("slug", slug).Str("new_slug", renamed.Slug()).Msg("Investor renamed")
	return renamed, nil
}

// DeleteInvestor removes an investor and all its allocations. Hard
// delete: no history is retained.
func (s *Service) DeleteInvestor(ctx context.Context, slug string) error {
	err := s.mutate(ctx, func(doc *models.PortfolioDocument) error {
		for idx := range doc.Investors {
			if doc.Investors[idx].Slug() == slug {
				doc.Investors = append(doc.Investors[:idx], doc.Investors[idx+1:]...)
				return nil
			}
		}
		return models.ErrInvestorNotFound
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("slug", slug).Msg("Investor deleted")
	return nil
}

// parseDateInvested accepts RFC3339 timestamps or bare dates.
func parseDateInvested(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("date_invested is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date_invested %q", raw)
}

// buildAllocation validates admin input and converts it to a model.
func buildAllocation(input interfaces.AllocationInput) (*models.Allocation, error) {
	date, err := parseDateInvested(input.DateInvested)
	if err != nil {
		return nil, models.NewValidationError("%v", err)
	}

	alloc := &models.Allocation{
		ID:             input.ID,
		Symbol:         models.NormalizeSymbol(input.Symbol),
		AmountInvested: input.AmountInvested,
		Shares:         input.Shares,
		DateInvested:   date,
	}
	if err := alloc.Validate(); err != nil {
		return nil, models.NewValidationError("%v", err)
	}
	return alloc, nil
}

// validateSymbol rejects symbols the quote adapter reports as no-data.
// Transport failures do not block the write: validation is best-effort.
func (s *Service) validateSymbol(ctx context.Context, symbol string) error {
	_, err := s.market.GetQuote(ctx, symbol)
	if errors.Is(err, models.ErrNoData) {
		return models.NewValidationError("unknown symbol %q", symbol)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Symbol validation skipped: quote provider unavailable")
	}
	return nil
}

// AddAllocation appends a validated allocation to an investor.
func (s *Service) AddAllocation(ctx context.Context, slug string, input interfaces.AllocationInput) (*models.Allocation, error) {
	alloc, err := buildAllocation(input)
	if err != nil {
		return nil, err
	}
	if err := s.validateSymbol(ctx, alloc.Symbol); err != nil {
		return nil, err
	}
	alloc.ID = uuid.New().String()

	err = s.mutate(ctx, func(doc *models.PortfolioDocument) error {
		inv := doc.FindInvestor(slug)
		if inv == nil {
			return models.ErrInvestorNotFound
		}
		inv.Allocations = append(inv.Allocations, *alloc)
		inv.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("slug", slug).
		Str("symbol", alloc.Symbol).
		Float64("amount", alloc.AmountInvested).
		Msg("Allocation added")
	return alloc, nil
}

// UpdateAllocation replaces the fields of an existing allocation.
func (s *Service) UpdateAllocation(ctx context.Context, slug string, input interfaces.AllocationInput) (*models.Allocation, error) {
	if input.ID == "" {
		return nil, models.NewValidationError("allocation id is required")
	}
	alloc, err := buildAllocation(input)
	if err != nil {
		return nil, err
	}
	if err := s.validateSymbol(ctx, alloc.Symbol); err != nil {
		return nil, err
	}

	err = s.mutate(ctx, func(doc *models.PortfolioDocument) error {
		inv := doc.FindInvestor(slug)
		if inv == nil {
			return models.ErrInvestorNotFound
		}
		existing := inv.FindAllocation(input.ID)
		if existing == nil {
			return models.ErrAllocationNotFound
		}
		*existing = *alloc
		inv.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("slug", slug).Str("allocation_id", alloc.ID).Msg("Allocation updated")
	return alloc, nil
}

// DeleteAllocation removes one allocation from an investor.
func (s *Service) DeleteAllocation(ctx context.Context, slug, allocationID string) error {
	if allocationID == "" {
		return models.NewValidationError("allocation id is required")
	}

	err := s.mutate(ctx, func(doc *models.PortfolioDocument) error {
		inv := doc.FindInvestor(slug)
		if inv == nil {
			return models.ErrInvestorNotFound
		}
		if !inv.RemoveAllocation(allocationID) {
			return models.ErrAllocationNotFound
		}
		inv.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("slug", slug).Str("allocation_id", allocationID).Msg("Allocation deleted")
	return nil
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
