// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a sellable product with tiered unit prices.
// All prices are integer cents; a zero tier price means the tier is
// not offered for this product.
type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SKU         string `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string `gorm:"not null;size:255" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Price          int64 `gorm:"not null" json:"price"` // base retail price
	SalePrice      int64 `gorm:"default:0" json:"sale_price"`
	WholesalePrice int64 `gorm:"default:0" json:"wholesale_price"`
	GSAPrice       int64 `gorm:"default:0" json:"gsa_price"`

	CategoryID       uint    `gorm:"index" json:"category_id"`
	Weight           float64 `json:"weight"` // grams, used for rate quotes
	IsActive         bool    `gorm:"default:true" json:"is_active"`
	RequiresShipping bool    `gorm:"default:true" json:"requires_shipping"`
	TrackQuantity    bool    `gorm:"default:true" json:"track_quantity"`
	Quantity         int     `gorm:"default:0" json:"quantity"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category"`
}

// Category represents a product category
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

// HasGovernmentPrice reports whether a GSA tier is offered
func (p *Product) HasGovernmentPrice() bool {
	return p.GSAPrice > 0
}

// HasWholesalePrice reports whether a wholesale tier is offered
func (p *Product) HasWholesalePrice() bool {
	return p.WholesalePrice > 0
}
