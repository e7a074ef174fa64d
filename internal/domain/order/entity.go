// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Order represents the order entity. Orders are immutable after creation
// except for the unpaid→paid and undelivered→delivered transitions; the
// four money fields are captured from the cart at creation time and never
// recomputed. Once IsPaid is true it is never unset.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`

	ShippingAddress Address            `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   user.PaymentMethod `gorm:"not null;size:50" json:"payment_method"`

	ItemsPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"items_price"`
	ShippingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping_price"`
	TaxPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`

	IsPaid      bool       `gorm:"not null;default:false" json:"is_paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	IsDelivered bool       `gorm:"not null;default:false" json:"is_delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	PaymentResult PaymentResult `gorm:"embedded;embeddedPrefix:payment_" json:"payment_result,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is a denormalized copy of a cart line at time of purchase.
// Immutable after creation.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index:idx_order_product,unique" json:"order_id"`
	ProductID uint            `gorm:"not null;index:idx_order_product,unique" json:"product_id"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Slug      string          `gorm:"not null;size:255" json:"slug"`
	Image     string          `gorm:"size:500" json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"` // Unit price at time of purchase
	Quantity  int             `gorm:"not null" json:"qty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Address is the shipping address snapshot embedded in an order
type Address struct {
	FullName      string `gorm:"size:255" json:"full_name"`
	StreetAddress string `gorm:"size:255" json:"street_address"`
	City          string `gorm:"size:100" json:"city"`
	PostalCode    string `gorm:"size:20" json:"postal_code"`
	Country       string `gorm:"size:2" json:"country"`
}

// PaymentResult records the provider-side outcome of a captured payment
type PaymentResult struct {
	ProviderID     string          `gorm:"size:255" json:"id,omitempty"`
	Status         string          `gorm:"size:50" json:"status,omitempty"`
	PayerEmail     string          `gorm:"size:255" json:"email_address,omitempty"`
	AmountCaptured decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"price_paid,omitempty"`
}

// UserSummary is the minimal user projection returned with a settled order
// for downstream notification.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// GenerateOrderNumber derives the order number from the order ID.
// Format: ORD-YYYYMMDD-XXXXX
func (o *Order) GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%05d", time.Now().UTC().Format("20060102"), o.ID)
}
