package models

import (
	"github.com/google/uuid"
	"github.com/swagpaypal/backend/internal/domain/pos"
)

// ProductModel is the persistence model for the stock relevant part of a product.
type ProductModel struct {
	BaseModel
	VersionID      uuid.UUID  `gorm:"type:uuid;not null"`
	ParentID       *uuid.UUID `gorm:"type:uuid;index"`
	Name           string     `gorm:"type:varchar(255)"`
	ProductNumber  string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	ChildCount     int        `gorm:"not null;default:0"`
	Stock          int        `gorm:"not null;default:0"`
	AvailableStock int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *pos.Product {
	return &pos.Product{
		ID:             m.ID,
		VersionID:      m.VersionID,
		ParentID:       m.ParentID,
		Name:           m.Name,
		ProductNumber:  m.ProductNumber,
		ChildCount:     m.ChildCount,
		Stock:          m.Stock,
		AvailableStock: m.AvailableStock,
	}
}

// ProductVisibilityModel assigns a product to a sales channel.
// Variants inherit the visibility of their parent.
type ProductVisibilityModel struct {
	ProductID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	SalesChannelID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (ProductVisibilityModel) TableName() string {
	return "product_visibilities"
}
