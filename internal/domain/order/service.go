// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the referenced order does not exist
	ErrNotFound = errors.New("order not found")
	// ErrCartEmpty is returned when creating an order from an empty cart
	ErrCartEmpty = errors.New("your cart is empty")
	// ErrMissingAddress is returned when the user has no shipping address
	ErrMissingAddress = errors.New("please add a shipping address")
	// ErrMissingPaymentMethod is returned when the user has not selected a payment method
	ErrMissingPaymentMethod = errors.New("please select a payment method")
	// ErrAlreadyPaid guards settlement idempotency: a second settlement
	// attempt for the same order must not mutate anything.
	ErrAlreadyPaid = errors.New("order is already paid")
	// ErrNotPaid is returned when delivering an unpaid order
	ErrNotPaid = errors.New("order is not paid")
	// ErrInsufficientStock signals a data-integrity fault: settlement would
	// have driven a product's stock negative.
	ErrInsufficientStock = errors.New("insufficient stock for order item")
)

// Service handles order business logic
type Service struct {
	db          *gorm.DB
	config      *config.Config
	cartService *cart.Service
	logger      *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: cartService,
		logger:      logger,
	}
}

// SettledOrder is the result of a successful settlement: the updated order
// plus the minimal user projection downstream notification needs.
type SettledOrder struct {
	Order *Order      `json:"order"`
	User  UserSummary `json:"user"`
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page   int  `form:"page,default=1"`
	Limit  int  `form:"limit,default=20"`
	UserID uint `form:"-"`
}

// OrderListResponse represents a page of orders
type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int64   `json:"total"`
	TotalPages int     `json:"total_pages"`
}

// CreateOrder converts the user's cart into an immutable order. Within one
// transaction it snapshots the cart lines into order items, creates the
// order with totals copied verbatim from the cart, and clears the cart,
// all three all-or-nothing. Preconditions are checked in order: cart not empty,
// shipping address present, payment method selected.
func (s *Service) CreateOrder(userID uint, sessionID string) (*Order, error) {
	var u user.User
	if err := s.db.Preload("Address").First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	identity := cart.Identity{UserID: &userID, SessionID: sessionID}

	var created *Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.cartService.GetCartTx(tx, identity)
		if err != nil {
			return err
		}
		if c == nil || c.IsEmpty() {
			return ErrCartEmpty
		}
		if u.Address == nil {
			return ErrMissingAddress
		}
		if u.PaymentMethod == "" {
			return ErrMissingPaymentMethod
		}

		// Totals are locked at order-creation time, copied from the
		// cart rather than recomputed. The order number needs the row
		// ID, so the insert carries a provisional unique value.
		o := Order{
			OrderNumber: "TMP-" + uuid.NewString(),
			UserID:      u.ID,
			ShippingAddress: Address{
				FullName:      u.Address.FullName,
				StreetAddress: u.Address.StreetAddress,
				City:          u.Address.City,
				PostalCode:    u.Address.PostalCode,
				Country:       u.Address.Country,
			},
			PaymentMethod: u.PaymentMethod,
			ItemsPrice:    c.ItemsPrice,
			ShippingPrice: c.ShippingPrice,
			TaxPrice:      c.TaxPrice,
			TotalPrice:    c.TotalPrice,
		}
		if err := tx.Create(&o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		o.OrderNumber = o.GenerateOrderNumber()
		if err := tx.Model(&o).Update("order_number", o.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to update order number: %w", err)
		}

		for _, line := range c.Items {
			item := OrderItem{
				OrderID:   o.ID,
				ProductID: line.ProductID,
				Name:      line.Name,
				Slug:      line.Slug,
				Image:     line.Image,
				Price:     line.Price,
				Quantity:  line.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			o.Items = append(o.Items, item)
		}

		if err := s.cartService.Clear(tx, c); err != nil {
			return err
		}

		created = &o
		return nil
	})
	if err != nil {
		if !isPreconditionError(err) {
			s.logger.WithFields(logrus.Fields{
				"user_id":   userID,
				"operation": "create_order",
			}).WithError(err).Error("order creation failed")
		}
		return nil, err
	}

	return created, nil
}

// SettlePayment transitions an order from unpaid to paid exactly once.
// Within one transaction it claims the unpaid flag with a guarded update
// (the row-lock equivalent that serializes concurrent settlers), decrements
// every order item's product stock with a floor-at-zero guard, and stores
// the payment result. A second settlement attempt gets ErrAlreadyPaid and
// mutates nothing.
func (s *Service) SettlePayment(orderID uint, result PaymentResult) (*SettledOrder, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var o Order
		if err := tx.Preload("Items").First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}

		// Claim the unpaid flag. Concurrent settlers serialize on this
		// row write; exactly one sees is_paid = false.
		now := time.Now().UTC()
		claim := tx.Model(&Order{}).
			Where("id = ? AND is_paid = ?", orderID, false).
			Updates(map[string]interface{}{
				"is_paid":                 true,
				"paid_at":                 now,
				"payment_provider_id":     result.ProviderID,
				"payment_status":          result.Status,
				"payment_payer_email":     result.PayerEmail,
				"payment_amount_captured": result.AmountCaptured,
			})
		if claim.Error != nil {
			return fmt.Errorf("failed to mark order paid: %w", claim.Error)
		}
		if claim.RowsAffected == 0 {
			return ErrAlreadyPaid
		}

		// Stock going negative is a data-integrity fault, not something
		// to clamp silently; it aborts the whole settlement.
		for _, item := range o.Items {
			res := tx.Model(&product.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %d: %w", item.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: product %d, qty %d", ErrInsufficientStock, item.ProductID, item.Quantity)
			}
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrAlreadyPaid) && !errors.Is(err, ErrNotFound) {
			s.logger.WithFields(logrus.Fields{
				"order_id":  orderID,
				"operation": "settle_payment",
			}).WithError(err).Error("payment settlement failed")
		}
		return nil, err
	}

	return s.getSettledOrder(orderID)
}

// MarkDelivered transitions a paid order to delivered. Delivery never
// precedes payment and there is no transition out of delivered.
func (s *Service) MarkDelivered(orderID uint) (*Order, error) {
	var o Order
	if err := s.db.Preload("Items").First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	if !o.IsPaid {
		return nil, ErrNotPaid
	}

	now := time.Now().UTC()
	if err := s.db.Model(&o).Updates(map[string]interface{}{
		"is_delivered": true,
		"delivered_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to mark order delivered: %w", err)
	}
	o.IsDelivered = true
	o.DeliveredAt = &now

	return &o, nil
}

// MarkPaidManually settles a cash-on-delivery order on behalf of a
// privileged actor, through the same idempotency guard as provider-mediated
// settlement.
func (s *Service) MarkPaidManually(orderID uint) (*SettledOrder, error) {
	return s.SettlePayment(orderID, PaymentResult{Status: "COMPLETED_MANUALLY"})
}

// GetOrder retrieves a single order with its items
func (s *Service) GetOrder(id uint) (*Order, error) {
	var o Order
	if err := s.db.Preload("Items").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetOrders retrieves orders with optional user filtering and pagination
func (s *Service) GetOrders(req *OrderListRequest) (*OrderListResponse, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).Preload("Items")
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderListResponse{
		Orders:     orders,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// GetUserOrders retrieves orders for a specific user
func (s *Service) GetUserOrders(userID uint, page, limit int) (*OrderListResponse, error) {
	return s.GetOrders(&OrderListRequest{Page: page, Limit: limit, UserID: userID})
}

func (s *Service) getSettledOrder(orderID uint) (*SettledOrder, error) {
	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	var summary UserSummary
	if err := s.db.Model(&user.User{}).
		Select("name", "email").
		Where("id = ?", o.UserID).
		First(&summary).Error; err != nil {
		return nil, fmt.Errorf("failed to load user projection: %w", err)
	}

	return &SettledOrder{Order: o, User: summary}, nil
}

func isPreconditionError(err error) bool {
	return errors.Is(err, ErrCartEmpty) ||
		errors.Is(err, ErrMissingAddress) ||
		errors.Is(err, ErrMissingPaymentMethod)
}
