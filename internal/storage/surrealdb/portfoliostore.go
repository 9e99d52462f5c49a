package surrealdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/models"
)

// portfolioRecordID is the single document holding every investor.
const portfolioRecordID = "main"

// PortfolioStore reads and writes the portfolio document. Writes are
// serialized in-process; the version check guards against stale API
// clients, not against other server instances.
type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
	mu     sync.Mutex
}

func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{
		db:     db,
		logger: logger,
	}
}

// GetDocument returns the stored document, or an empty document at
// version 0 when nothing has been written yet.
func (s *PortfolioStore) GetDocument(ctx context.Context) (*models.PortfolioDocument, error) {
	doc, err := surrealdb.Select[models.PortfolioDocument](ctx, s.db, surrealmodels.NewRecordID("portfolio", portfolioRecordID))
	if err != nil {
		return nil, fmt.Errorf("failed to select portfolio document: %w", err)
	}
	if doc == nil {
		return &models.PortfolioDocument{}, nil
	}
	return doc, nil
}

// SaveDocument writes the document if its stored version still equals
// expectedVersion, bumping the version by one. A mismatch returns
// models.ErrVersionConflict without writing.
func (s *PortfolioStore) SaveDocument(ctx context.Context, doc *models.PortfolioDocument, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.GetDocument(ctx)
	if err != nil {
		return err
	}
	if current.Version != expectedVersion {
		return models.ErrVersionConflict
	}

	doc.Version = expectedVersion + 1

	sql := "UPSERT type::record('portfolio', $id) CONTENT $doc"
	vars := map[string]any{"id": portfolioRecordID, "doc": doc}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.PortfolioDocument](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save portfolio document after retries: %w", err)
		}
	}
	return nil
}
