// Package catalog gives the assistant one view over the product catalog:
// the WooCommerce shop when it answers, a static local list when it does not.
package catalog

import (
	"errors"
	"time"
)

var (
	// ErrCatalogUnavailable is returned by remote sources on transport
	// failure, timeout or a non-2xx response. The Adapter logs it and falls
	// back to the local catalog.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrNotFound           = errors.New("catalog record not found")
)

type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockOutOfStock StockStatus = "out_of_stock"
	StockUnknown    StockStatus = "unknown"
)

type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Rank orders sources for tie-breaking: remote records are fresher.
func (s Source) Rank() int {
	if s == SourceRemote {
		return 0
	}
	return 1
}

// ProductRecord is the homogeneous shape every source is mapped into.
type ProductRecord struct {
	ID          int         `json:"id,omitempty"`
	Name        string      `json:"name"`
	Price       float64     `json:"price"`
	Currency    string      `json:"currency"`
	StockStatus StockStatus `json:"stock_status"`
	URL         string      `json:"url"`
	SKU         string      `json:"sku,omitempty"`
	Category    string      `json:"category,omitempty"`
	Source      Source      `json:"source"`
}

type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

type OrderRecord struct {
	ID           int         `json:"id"`
	Number       string      `json:"number"`
	Status       string      `json:"status"`
	Total        float64     `json:"total"`
	Currency     string      `json:"currency"`
	CreatedAt    time.Time   `json:"created_at"`
	BillingPhone string      `json:"billing_phone,omitempty"`
	BillingEmail string      `json:"billing_email,omitempty"`
	Items        []OrderItem `json:"items"`
}

// PriceRange is an inclusive range in whole currency units. Min is 0 for
// "under X" queries.
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r PriceRange) Contains(price float64) bool {
	return price >= float64(r.Min) && price <= float64(r.Max)
}
