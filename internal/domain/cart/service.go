// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no cart exists for the identity
	ErrNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned when the cart has no line for the product
	ErrItemNotFound = errors.New("item not found in cart")
	// ErrOutOfStock is returned when the requested quantity exceeds stock
	ErrOutOfStock = errors.New("not enough stock")
)

// Service handles cart business logic
type Service struct {
	db         *gorm.DB
	config     *config.Config
	calculator *pricing.Calculator
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:         db,
		config:     cfg,
		calculator: pricing.NewCalculator(cfg),
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"qty" binding:"required,min=1"`
}

// GetCart returns the cart for the identity, or nil when none exists.
// Absence is not an error; callers decide whether an empty cart matters.
func (s *Service) GetCart(identity Identity) (*Cart, error) {
	return s.getCart(s.db, identity)
}

// GetCartTx is GetCart bound to an existing transaction, for callers that
// must read and clear the cart atomically with their own writes.
func (s *Service) GetCartTx(tx *gorm.DB, identity Identity) (*Cart, error) {
	return s.getCart(tx, identity)
}

// AddItem adds a product to the cart, creating the cart on first use.
// An existing line for the same product has its quantity incremented
// instead of duplicating the line. Totals are recomputed and persisted.
func (s *Service) AddItem(identity Identity, req *AddItemRequest) (*Cart, error) {
	var prod product.Product
	if err := s.db.First(&prod, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	var result *Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.getCart(tx, identity)
		if err != nil {
			return err
		}
		if c == nil {
			c = &Cart{UserID: identity.UserID}
			if identity.UserID == nil {
				sessionID := identity.SessionID
				c.SessionID = &sessionID
			}
			if err := tx.Create(c).Error; err != nil {
				return fmt.Errorf("failed to create cart: %w", err)
			}
		}

		existing := c.findItem(req.ProductID)
		if existing != nil {
			newQuantity := existing.Quantity + req.Quantity
			if !prod.InStock(newQuantity) {
				return ErrOutOfStock
			}
			existing.Quantity = newQuantity
			if err := tx.Save(existing).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		} else {
			if !prod.InStock(req.Quantity) {
				return ErrOutOfStock
			}
			line := CartItem{
				CartID:    c.ID,
				ProductID: prod.ID,
				Name:      prod.Name,
				Slug:      prod.Slug,
				Image:     prod.Image,
				Price:     prod.Price,
				Quantity:  req.Quantity,
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("failed to create cart item: %w", err)
			}
			c.Items = append(c.Items, line)
		}

		if err := s.persistTotals(tx, c); err != nil {
			return err
		}

		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem decrements the product's line by one, deleting the line when
// it reaches zero. Totals are recomputed and persisted.
func (s *Service) RemoveItem(identity Identity, productID uint) (*Cart, error) {
	var result *Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.getCart(tx, identity)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrNotFound
		}

		line := c.findItem(productID)
		if line == nil {
			return ErrItemNotFound
		}

		if line.Quantity <= 1 {
			if err := tx.Delete(line).Error; err != nil {
				return fmt.Errorf("failed to delete cart item: %w", err)
			}
			c.removeItem(productID)
		} else {
			line.Quantity--
			if err := tx.Save(line).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		}

		if err := s.persistTotals(tx, c); err != nil {
			return err
		}

		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Clear empties the cart's line items and zeroes its totals within the
// given transaction. The cart row itself survives. Used by order creation,
// which must clear the cart atomically with the order insert.
func (s *Service) Clear(tx *gorm.DB, c *Cart) error {
	if err := tx.Where("cart_id = ?", c.ID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	c.Items = nil
	return s.persistTotals(tx, c)
}

// getCart loads the cart with items for the identity, preferring the
// authenticated user over the anonymous session.
func (s *Service) getCart(tx *gorm.DB, identity Identity) (*Cart, error) {
	query := tx.Preload("Items")
	if identity.UserID != nil {
		query = query.Where("user_id = ?", *identity.UserID)
	} else {
		if identity.SessionID == "" {
			return nil, fmt.Errorf("session ID required for guest cart")
		}
		query = query.Where("session_id = ?", identity.SessionID)
	}

	var c Cart
	if err := query.First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &c, nil
}

// persistTotals recomputes the derived money fields from the current line
// items and writes them back.
func (s *Service) persistTotals(tx *gorm.DB, c *Cart) error {
	items := make([]pricing.LineItem, len(c.Items))
	for i, line := range c.Items {
		items[i] = pricing.LineItem{UnitPrice: line.Price, Quantity: line.Quantity}
	}
	totals := s.calculator.Calculate(items)

	c.ItemsPrice = totals.ItemsPrice
	c.ShippingPrice = totals.ShippingPrice
	c.TaxPrice = totals.TaxPrice
	c.TotalPrice = totals.TotalPrice

	updates := map[string]interface{}{
		"items_price":    totals.ItemsPrice,
		"shipping_price": totals.ShippingPrice,
		"tax_price":      totals.TaxPrice,
		"total_price":    totals.TotalPrice,
	}
	if err := tx.Model(&Cart{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to persist cart totals: %w", err)
	}
	return nil
}

func (c *Cart) findItem(productID uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) removeItem(productID uint) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}
