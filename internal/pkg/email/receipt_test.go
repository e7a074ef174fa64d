// internal/pkg/email/receipt_test.go
package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

func testSettledOrder() *order.SettledOrder {
	paidAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	o := &order.Order{
		OrderNumber:   "ORD-20240315-00042",
		ItemsPrice:    decimal.RequireFromString("84.99"),
		ShippingPrice: decimal.RequireFromString("10.00"),
		TaxPrice:      decimal.RequireFromString("12.75"),
		TotalPrice:    decimal.RequireFromString("107.74"),
		IsPaid:        true,
		PaidAt:        &paidAt,
		Items: []order.OrderItem{
			{Name: "Polo Shirt", Quantity: 1, Price: decimal.RequireFromString("84.99")},
		},
	}
	o.CreatedAt = paidAt
	return &order.SettledOrder{
		Order: o,
		User:  order.UserSummary{Name: "Jane Buyer", Email: "jane@example.com"},
	}
}

func TestSendReceipt(t *testing.T) {
	var received ResendEmailRequest
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(ResendResponse{ID: "re_123"})
	}))
	defer server.Close()

	svc := NewReceiptService(&config.Config{
		Email: config.EmailConfig{APIKey: "re_test_key", FromEmail: "shop@example.com", FromName: "Storefront"},
	})
	svc.endpoint = server.URL

	require.NoError(t, svc.SendReceipt(testSettledOrder()))

	assert.Equal(t, "Bearer re_test_key", authHeader)
	assert.Equal(t, "Storefront <shop@example.com>", received.From)
	assert.Equal(t, []string{"jane@example.com"}, received.To)
	assert.Equal(t, "Order Confirmation ORD-20240315-00042", received.Subject)
	assert.Contains(t, received.HTML, "Jane Buyer")
	assert.Contains(t, received.HTML, "ORD-20240315-00042")
	assert.Contains(t, received.HTML, "Polo Shirt")
	assert.Contains(t, received.HTML, "$107.74")
}

func TestSendReceipt_MissingAPIKey(t *testing.T) {
	svc := NewReceiptService(&config.Config{})
	assert.Error(t, svc.SendReceipt(testSettledOrder()))
}

func TestSendReceipt_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc := NewReceiptService(&config.Config{
		Email: config.EmailConfig{APIKey: "bad-key", FromEmail: "shop@example.com"},
	})
	svc.endpoint = server.URL

	assert.Error(t, svc.SendReceipt(testSettledOrder()))
}
