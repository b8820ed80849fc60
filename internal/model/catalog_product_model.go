package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CatalogProduct is a row of the database-backed fallback catalog.
type CatalogProduct struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string            `gorm:"type:varchar(255);not null"`
	URL         string            `gorm:"type:varchar(512);uniqueIndex;not null"`
	SKU         string            `gorm:"type:varchar(100);index"`
	Category    string            `gorm:"type:varchar(100);index"`
	Price       float64           `gorm:"type:numeric(12,2);default:0"`
	StockStatus string            `gorm:"type:varchar(20);default:'in_stock'"`
	IsActive    bool              `gorm:"default:true"`
	Meta        datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
}

func (CatalogProduct) TableName() string {
	return "catalog_products"
}
