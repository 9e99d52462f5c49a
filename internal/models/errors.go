package models

import (
	"errors"
	"fmt"
)

// ErrNoData is returned by market adapters when a provider has nothing
// for a symbol. Callers treat the corresponding field as unresolved.
var ErrNoData = errors.New("no market data")

// ErrVersionConflict is returned when a document save carries a stale
// version (another writer committed first).
var ErrVersionConflict = errors.New("document version conflict")

// ErrInvestorNotFound is returned when a slug resolves to no investor.
var ErrInvestorNotFound = errors.New("investor not found")

// ErrAllocationNotFound is returned when an allocation ID is unknown.
var ErrAllocationNotFound = errors.New("allocation not found")

// ErrDuplicateInvestor is returned on a create/rename whose name
// collides case-insensitively with an existing investor.
var ErrDuplicateInvestor = errors.New("investor name already exists")

// ValidationError marks bad admin input (maps to HTTP 400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProviderError is a non-2xx response from a market-data provider.
type ProviderError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsRateLimited reports whether the provider signalled throttling.
func (e *ProviderError) IsRateLimited() bool {
	return e.StatusCode == 403 || e.StatusCode == 429
}

// HistoryUnavailableError is the history resolver's terminal
// classification when every fallback step failed.
type HistoryUnavailableError struct {
	Symbol      string
	RateLimited bool
}

func (e *HistoryUnavailableError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("history for %s temporarily unavailable (rate limited)", e.Symbol)
	}
	return fmt.Sprintf("no history found for %s", e.Symbol)
}
