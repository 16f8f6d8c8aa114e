package usecase

import (
	"context"

	"billing-reconciliation/internal/domain"
)

// LedgerRepository fetches the raw sales ledger as header-keyed rows. The
// usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go LedgerRepository,BillingRepository
type LedgerRepository interface {
	GetLedgerRows(ctx context.Context, path string) ([]map[string]string, error)
}

// BillingRepository fetches the full billing-provider snapshot. Pagination,
// retries and caching are behind this boundary; the engine sees only the
// complete, already-fetched state.
type BillingRepository interface {
	GetBillingSnapshot(ctx context.Context, path string) (*domain.BillingSnapshot, error)
}
