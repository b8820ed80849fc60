package implementation

import (
	"context"

	"sales-assistant-be/internal/model"
	"sales-assistant-be/internal/repository/contract"
	"sales-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 200

type CatalogProductRepositoryImpl struct {
	db *gorm.DB
}

func NewCatalogProductRepository(db *gorm.DB) contract.CatalogProductRepository {
	return &CatalogProductRepositoryImpl{db: db}
}

func (r *CatalogProductRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CatalogProductRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.CatalogProduct, error) {
	var models []*model.CatalogProduct
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CatalogProduct{}), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *CatalogProductRepositoryImpl) UpsertMany(ctx context.Context, products []*model.CatalogProduct) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "sku", "category", "price", "stock_status", "meta", "updated_at"}),
		}).
		CreateInBatches(products, upsertBatchSize).Error
}

func (r *CatalogProductRepositoryImpl) DeactivateExcept(ctx context.Context, keep []string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.CatalogProduct{}).Where("is_active = ?", true)
	if len(keep) > 0 {
		query = query.Where("url NOT IN ?", keep)
	}
	res := query.Update("is_active", false)
	return res.RowsAffected, res.Error
}
