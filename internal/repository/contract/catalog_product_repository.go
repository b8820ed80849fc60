package contract

import (
	"context"

	"sales-assistant-be/internal/model"
	"sales-assistant-be/internal/repository/specification"
)

type CatalogProductRepository interface {
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.CatalogProduct, error)
	// UpsertMany inserts products or updates the existing row with the same URL.
	UpsertMany(ctx context.Context, products []*model.CatalogProduct) error
	// DeactivateExcept switches off every active product whose URL is not in keep.
	DeactivateExcept(ctx context.Context, keep []string) (int64, error)
}
