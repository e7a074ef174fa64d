// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart holds the mutable pre-order line items for one identity. Exactly one
// of UserID / SessionID is set. The four money columns are always derived
// from the items, never edited directly. A cart is cleared, not deleted,
// when it is converted into an order.
type Cart struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    *uint   `gorm:"uniqueIndex" json:"user_id,omitempty"`
	SessionID *string `gorm:"uniqueIndex;size:64" json:"session_id,omitempty"`

	ItemsPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"items_price"`
	ShippingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shipping_price"`
	TaxPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_price"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// CartItem is one product line in a cart. A product appears at most once
// per cart; adding it again increments Quantity.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    uint            `gorm:"not null;index:idx_cart_product,unique" json:"cart_id"`
	ProductID uint            `gorm:"not null;index:idx_cart_product,unique" json:"product_id"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Slug      string          `gorm:"not null;size:255" json:"slug"`
	Image     string          `gorm:"size:500" json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"` // Unit price at time of adding
	Quantity  int             `gorm:"not null;default:1" json:"qty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (Cart) TableName() string {
	return "carts"
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// Identity names the owner of a cart: an authenticated user when UserID is
// set, otherwise the anonymous session. The session id is an opaque key
// issued elsewhere (cookie, 30-day lifetime).
type Identity struct {
	UserID    *uint
	SessionID string
}

// IsEmpty reports whether the cart has no line items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
