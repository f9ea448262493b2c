package usecase

import (
	"context"

	"ledger-reconciliation/internal/domain"
)

// TableRepository defines the interface for materializing input tables.
// The usecase layer depends on this interface, not on a concrete implementation.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go TableRepository
type TableRepository interface {
	GetTable(ctx context.Context, ref string) (*domain.Table, error)
}
