// internal/domain/payment/service_test.go
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memoryTokenStore is an in-memory TokenStore for tests
type memoryTokenStore struct {
	mu    sync.Mutex
	token string
	ttl   time.Duration
}

func (s *memoryTokenStore) GetToken(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memoryTokenStore) SetToken(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.ttl = ttl
	return nil
}

// recordingReceiptSender captures receipt deliveries for assertions
type recordingReceiptSender struct {
	delivered chan *order.SettledOrder
}

func newRecordingReceiptSender() *recordingReceiptSender {
	return &recordingReceiptSender{delivered: make(chan *order.SettledOrder, 1)}
}

func (r *recordingReceiptSender) SendReceipt(settled *order.SettledOrder) error {
	r.delivered <- settled
	return nil
}

// fakeProvider is an httptest stand-in for the PayPal REST API
type fakeProvider struct {
	mu             sync.Mutex
	tokenRequests  int
	createRequests []map[string]interface{}
	captureStatus  string
	capturedIDs    []string
	server         *httptest.Server
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	f := &fakeProvider{captureStatus: "COMPLETED"}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenRequests++
		f.mu.Unlock()

		user, pass, ok := r.BasicAuth()
		if !ok || user != "test-client" || pass != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fake-access-token",
			"token_type":   "Bearer",
			"expires_in":   32400,
		})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fake-access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.createRequests = append(f.createRequests, body)
		f.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "5O190127TN364715T",
			"status": "CREATED",
		})
	})
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fake-access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		status := f.captureStatus
		f.capturedIDs = append(f.capturedIDs, r.URL.Path)
		f.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "5O190127TN364715T",
			"status": status,
			"payer": map[string]interface{}{
				"email_address": "jane@example.com",
			},
			"purchase_units": []map[string]interface{}{
				{
					"payments": map[string]interface{}{
						"captures": []map[string]interface{}{
							{"amount": map[string]interface{}{"currency_code": "USD", "value": "107.49"}},
						},
					},
				},
			},
		})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

type paymentFixture struct {
	db       *gorm.DB
	provider *fakeProvider
	store    *memoryTokenStore
	receipts *recordingReceiptSender
	orderSvc *order.Service
	svc      *Service
	order    *order.Order
	products []*product.Product
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &user.Address{},
		&product.Product{},
		&cart.Cart{}, &cart.CartItem{},
		&order.Order{}, &order.OrderItem{},
	))
	t.Cleanup(func() { sqlDB.Close() })

	provider := newFakeProvider(t)

	cfg := &config.Config{
		Pricing: config.PricingConfig{
			Currency:              "USD",
			FreeShippingThreshold: decimal.NewFromInt(100),
			ShippingFee:           decimal.NewFromInt(10),
			TaxRate:               decimal.RequireFromString("0.15"),
		},
		PayPal: config.PayPalConfig{
			BaseURL:      provider.server.URL,
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			Timeout:      5 * time.Second,
		},
	}

	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)

	u := &user.User{Name: "Jane Buyer", Email: "jane@example.com", Password: "x", PaymentMethod: user.PaymentMethodPayPal}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(&user.Address{
		UserID: u.ID, FullName: "Jane Buyer", StreetAddress: "1 Main St",
		City: "Springfield", PostalCode: "12345", Country: "US",
	}).Error)

	p := &product.Product{
		Name: "Polo Shirt", Slug: "polo-shirt", Category: "shirts", Brand: "Polo",
		Price: decimal.RequireFromString("84.99"), Stock: 4,
	}
	require.NoError(t, db.Create(p).Error)

	cartSvc := cart.NewService(db, cfg)
	orderSvc := order.NewService(db, cfg, cartSvc, l)

	identity := cart.Identity{UserID: &u.ID}
	_, err = cartSvc.AddItem(identity, &cart.AddItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	o, err := orderSvc.CreateOrder(u.ID, "")
	require.NoError(t, err)

	store := &memoryTokenStore{}
	receipts := newRecordingReceiptSender()
	client := NewPayPalClient(cfg, store)
	svc := NewService(client, orderSvc, receipts, l)

	return &paymentFixture{
		db:       db,
		provider: provider,
		store:    store,
		receipts: receipts,
		orderSvc: orderSvc,
		svc:      svc,
		order:    o,
		products: []*product.Product{p},
	}
}

func TestCreateProviderOrder_SendsPersistedTotal(t *testing.T) {
	f := newPaymentFixture(t)

	intent, err := f.svc.CreateProviderOrder(context.Background(), f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, "5O190127TN364715T", intent.ID)
	assert.Equal(t, "CREATED", intent.Status)

	require.Len(t, f.provider.createRequests, 1)
	body := f.provider.createRequests[0]
	assert.Equal(t, "CAPTURE", body["intent"])

	units := body["purchase_units"].([]interface{})
	require.Len(t, units, 1)
	unit := units[0].(map[string]interface{})
	assert.Equal(t, strconv.FormatUint(uint64(f.order.ID), 10), unit["reference_id"])

	amt := unit["amount"].(map[string]interface{})
	assert.Equal(t, "USD", amt["currency_code"])
	// 84.99 items + 10.00 shipping + 12.75 tax
	assert.Equal(t, "107.74", amt["value"])
}

func TestCreateProviderOrder_UnknownOrder(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateProviderOrder(context.Background(), 9999)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestCreateProviderOrder_PaidOrderIsRejected(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.orderSvc.SettlePayment(f.order.ID, order.PaymentResult{Status: "COMPLETED"})
	require.NoError(t, err)

	_, err = f.svc.CreateProviderOrder(context.Background(), f.order.ID)
	assert.ErrorIs(t, err, order.ErrAlreadyPaid)
	assert.Empty(t, f.provider.createRequests, "no provider call for a paid order")
}

func TestAccessToken_CachedAcrossCalls(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateProviderOrder(context.Background(), f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.tokenRequests)
	assert.Equal(t, "fake-access-token", f.store.token)
	assert.Equal(t, 32400*time.Second-tokenTTLMargin, f.store.ttl)

	// Second call reuses the cached token.
	_, err = f.svc.CaptureProviderOrder(context.Background(), f.order.ID, "5O190127TN364715T")
	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.tokenRequests)
}

func TestCaptureProviderOrder_SettlesOrder(t *testing.T) {
	f := newPaymentFixture(t)

	settled, err := f.svc.CaptureProviderOrder(context.Background(), f.order.ID, "5O190127TN364715T")
	require.NoError(t, err)

	assert.True(t, settled.IsPaid)
	assert.Equal(t, "5O190127TN364715T", settled.PaymentResult.ProviderID)
	assert.Equal(t, "COMPLETED", settled.PaymentResult.Status)
	assert.Equal(t, "jane@example.com", settled.PaymentResult.PayerEmail)
	assert.Equal(t, "107.49", settled.PaymentResult.AmountCaptured.StringFixed(2))

	var p product.Product
	require.NoError(t, f.db.First(&p, f.products[0].ID).Error)
	assert.Equal(t, 3, p.Stock)

	select {
	case got := <-f.receipts.delivered:
		assert.Equal(t, f.order.ID, got.Order.ID)
		assert.Equal(t, "jane@example.com", got.User.Email)
	case <-time.After(2 * time.Second):
		t.Fatal("receipt was never delivered")
	}
}

func TestCaptureProviderOrder_NonCompletedLeavesOrderUnpaid(t *testing.T) {
	f := newPaymentFixture(t)
	f.provider.captureStatus = "PENDING"

	_, err := f.svc.CaptureProviderOrder(context.Background(), f.order.ID, "5O190127TN364715T")
	assert.ErrorIs(t, err, ErrCaptureIncomplete)

	got, err := f.orderSvc.GetOrder(f.order.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPaid)

	var p product.Product
	require.NoError(t, f.db.First(&p, f.products[0].ID).Error)
	assert.Equal(t, 4, p.Stock, "stock untouched after incomplete capture")
}

func TestCaptureProviderOrder_RetryOnPaidOrderIsNoOp(t *testing.T) {
	f := newPaymentFixture(t)

	first, err := f.svc.CaptureProviderOrder(context.Background(), f.order.ID, "5O190127TN364715T")
	require.NoError(t, err)
	require.True(t, first.IsPaid)

	// The retry finds the order paid and succeeds without resettling.
	second, err := f.svc.CaptureProviderOrder(context.Background(), f.order.ID, "5O190127TN364715T")
	require.NoError(t, err)
	assert.True(t, second.IsPaid)
	assert.Equal(t, first.PaymentResult.ProviderID, second.PaymentResult.ProviderID)

	var p product.Product
	require.NoError(t, f.db.First(&p, f.products[0].ID).Error)
	assert.Equal(t, 3, p.Stock, "stock decremented exactly once")
}

func TestProviderError_CarriesStatusAndMessage(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 3600})
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"name":"UNPROCESSABLE_ENTITY"}`)
	}))
	defer failing.Close()

	cfg := &config.Config{
		Pricing: config.PricingConfig{Currency: "USD"},
		PayPal: config.PayPalConfig{
			BaseURL: failing.URL, ClientID: "id", ClientSecret: "secret", Timeout: 5 * time.Second,
		},
	}
	client := NewPayPalClient(cfg, &memoryTokenStore{})

	_, err := client.CreateOrder(context.Background(), "1", decimal.NewFromInt(10))
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusUnprocessableEntity, provErr.StatusCode)
	assert.Contains(t, provErr.Message, "UNPROCESSABLE_ENTITY")
}
