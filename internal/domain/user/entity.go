// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// PaymentMethod is the closed set of payment methods a user can select
type PaymentMethod string

const (
	PaymentMethodPayPal         PaymentMethod = "PayPal"
	PaymentMethodStripe         PaymentMethod = "Stripe"
	PaymentMethodCashOnDelivery PaymentMethod = "CashOnDelivery"
)

// IsValid reports whether the payment method is one of the supported values
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPayPal, PaymentMethodStripe, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// User represents the user entity
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;size:255" json:"name"`
	Email         string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password      string         `gorm:"not null;size:255" json:"-"`
	IsAdmin       bool           `gorm:"default:false" json:"is_admin"`
	PaymentMethod PaymentMethod  `gorm:"size:50" json:"payment_method,omitempty"`
	LastLoginAt   *time.Time     `json:"last_login_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Address *Address `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"address,omitempty"`
}

// Address represents the user's shipping address
type Address struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName      string    `gorm:"not null;size:255" json:"full_name"`
	StreetAddress string    `gorm:"not null;size:255" json:"street_address"`
	City          string    `gorm:"not null;size:100" json:"city"`
	PostalCode    string    `gorm:"not null;size:20" json:"postal_code"`
	Country       string    `gorm:"not null;size:2" json:"country"` // ISO 2-letter code
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	// Email should be lowercase
	u.Email = strings.ToLower(u.Email)
	return nil
}
