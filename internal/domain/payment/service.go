// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// ErrCaptureIncomplete is returned when the provider reports any capture
// status other than COMPLETED. The order stays unpaid and no stock moves.
var ErrCaptureIncomplete = errors.New("payment capture not completed")

// ReceiptSender delivers a purchase receipt after settlement. Delivery
// failure never affects the settlement itself.
type ReceiptSender interface {
	SendReceipt(settled *order.SettledOrder) error
}

// Service reconciles provider-side payment intents with the order ledger
type Service struct {
	client       *PayPalClient
	orderService *order.Service
	receipts     ReceiptSender
	logger       *logrus.Logger
}

// NewService creates a new payment service. receipts may be nil when no
// receipt delivery is configured.
func NewService(client *PayPalClient, orderService *order.Service, receipts ReceiptSender, logger *logrus.Logger) *Service {
	return &Service{
		client:       client,
		orderService: orderService,
		receipts:     receipts,
		logger:       logger,
	}
}

// CreateProviderOrder opens a payment intent at the provider for an unpaid
// order. The amount always comes from the persisted order total, never from
// client input.
func (s *Service) CreateProviderOrder(ctx context.Context, orderID uint) (*ProviderOrder, error) {
	o, err := s.orderService.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if o.IsPaid {
		return nil, order.ErrAlreadyPaid
	}

	referenceID := strconv.FormatUint(uint64(o.ID), 10)
	intent, err := s.client.CreateOrder(ctx, referenceID, o.TotalPrice)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id":  orderID,
			"operation": "create_provider_order",
		}).WithError(err).Error("provider order creation failed")
		return nil, err
	}

	return intent, nil
}

// CaptureProviderOrder captures the funds for an approved payment intent
// and settles the order. A capture status other than COMPLETED leaves the
// order untouched. A concurrent or repeated capture that finds the order
// already paid is a no-op success: the first settlement stands.
func (s *Service) CaptureProviderOrder(ctx context.Context, orderID uint, providerOrderID string) (*order.Order, error) {
	capture, err := s.client.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_id":  orderID,
			"operation": "capture_provider_order",
		}).WithError(err).Error("provider capture failed")
		return nil, err
	}

	if capture.Status != "COMPLETED" {
		return nil, fmt.Errorf("%w: provider status %q", ErrCaptureIncomplete, capture.Status)
	}

	result := order.PaymentResult{
		ProviderID: capture.ID,
		Status:     capture.Status,
		PayerEmail: capture.Payer.EmailAddress,
	}
	if value := capture.capturedValue(); value != "" {
		captured, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("provider returned malformed captured amount %q: %w", value, err)
		}
		result.AmountCaptured = captured
	}

	settled, err := s.orderService.SettlePayment(orderID, result)
	if err != nil {
		if errors.Is(err, order.ErrAlreadyPaid) {
			return s.orderService.GetOrder(orderID)
		}
		return nil, err
	}

	s.sendReceipt(settled)

	return settled.Order, nil
}

// sendReceipt dispatches the receipt asynchronously; failures are logged
// and never surface to the capture caller.
func (s *Service) sendReceipt(settled *order.SettledOrder) {
	if s.receipts == nil {
		return
	}
	go func() {
		if err := s.receipts.SendReceipt(settled); err != nil {
			s.logger.WithFields(logrus.Fields{
				"order_id":  settled.Order.ID,
				"operation": "send_receipt",
			}).WithError(err).Error("receipt delivery failed")
		}
	}()
}
