package unitofwork

import (
	"context"

	"sales-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CatalogProductRepository() contract.CatalogProductRepository
}

// RepositoryFactory hands out a fresh unit of work per operation.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
