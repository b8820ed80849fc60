package mapper

import (
	"sales-assistant-be/internal/model"
	"sales-assistant-be/pkg/catalog"

	"gorm.io/datatypes"
)

type CatalogProductMapper struct{}

func NewCatalogProductMapper() *CatalogProductMapper {
	return &CatalogProductMapper{}
}

func (m *CatalogProductMapper) ToLocal(p *model.CatalogProduct) catalog.LocalProduct {
	return catalog.LocalProduct{
		Name:     p.Name,
		Price:    catalog.Price(p.Price),
		Status:   p.StockStatus,
		URL:      p.URL,
		SKU:      p.SKU,
		Category: p.Category,
	}
}

func (m *CatalogProductMapper) ToLocals(products []*model.CatalogProduct) []catalog.LocalProduct {
	out := make([]catalog.LocalProduct, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		out = append(out, m.ToLocal(p))
	}
	return out
}

// ToModel keeps the imported row's source in Meta so reseeding is traceable.
func (m *CatalogProductMapper) ToModel(p catalog.LocalProduct, source string) *model.CatalogProduct {
	return &model.CatalogProduct{
		Name:        p.Name,
		URL:         p.URL,
		SKU:         p.SKU,
		Category:    p.Category,
		Price:       float64(p.Price),
		StockStatus: string(catalog.NormalizeStockStatus(p.Status)),
		IsActive:    true,
		Meta:        datatypes.JSONMap{"source": source},
	}
}
