// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents the product entity. Stock is the single shared
// counter the order settlement flow decrements; it must never go negative.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null;size:255" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Category    string          `gorm:"size:100" json:"category"`
	Brand       string          `gorm:"size:100" json:"brand"`
	Description string          `gorm:"type:text" json:"description"`
	Image       string          `gorm:"size:500" json:"image"`
	Banner      string          `gorm:"size:500" json:"banner,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Rating      decimal.Decimal `gorm:"type:decimal(3,2);default:0" json:"rating"`
	NumReviews  int             `gorm:"default:0" json:"num_reviews"`
	IsFeatured  bool            `gorm:"default:false" json:"is_featured"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// InStock reports whether the requested quantity is available
func (p *Product) InStock(quantity int) bool {
	return p.Stock >= quantity
}
