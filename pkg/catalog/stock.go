package catalog

import (
	"strings"

	"sales-assistant-be/pkg/textnorm"
)

var stockAliases = map[string]StockStatus{
	"instock":         StockInStock,
	"in stock":        StockInStock,
	"in_stock":        StockInStock,
	"auf lager":       StockInStock,
	"lagernd":         StockInStock,
	"verfugbar":       StockInStock,
	"available":       StockInStock,
	"stokta":          StockInStock,
	"outofstock":      StockOutOfStock,
	"out of stock":    StockOutOfStock,
	"out_of_stock":    StockOutOfStock,
	"ausverkauft":     StockOutOfStock,
	"nicht verfugbar": StockOutOfStock,
	"nicht auf lager": StockOutOfStock,
	"unavailable":     StockOutOfStock,
	"stokta yok":      StockOutOfStock,
}

// NormalizeStockStatus maps the free-form status strings used by WooCommerce
// and the local catalog onto the three-value enum.
func NormalizeStockStatus(raw string) StockStatus {
	key := strings.TrimSpace(strings.ToLower(raw))
	if s, ok := stockAliases[key]; ok {
		return s
	}
	if s, ok := stockAliases[textnorm.Normalize(raw)]; ok {
		return s
	}
	return StockUnknown
}
