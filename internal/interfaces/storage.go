package interfaces

import (
	"context"

	"github.com/foliolab/folio/internal/models"
)

// StorageManager coordinates the storage backends
type StorageManager interface {
	PortfolioStore() PortfolioStore
	SystemStore() SystemStore
	Close() error
}

// PortfolioStore persists the single portfolio document holding all
// investor records. Writes carry the version the caller read; a save
// against a moved version fails with the store's conflict error.
type PortfolioStore interface {
	// GetDocument returns the portfolio document, or an empty document
	// with version 0 when none has been saved yet.
	GetDocument(ctx context.Context) (*models.PortfolioDocument, error)

	// SaveDocument persists the document when its stored version still
	// equals expectedVersion, bumping the version on success.
	SaveDocument(ctx context.Context, doc *models.PortfolioDocument, expectedVersion int64) error
}

// SystemStore is a small system-level key-value store for runtime
// settings (schema version marker, admin password override).
type SystemStore interface {
	GetKV(ctx context.Context, key string) (string, error)
	SetKV(ctx context.Context, key, value string) error
}
