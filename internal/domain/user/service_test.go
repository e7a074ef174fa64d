// internal/domain/user/service_test.go
package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newUserService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&User{}, &Address{}))
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-at-least-32-chars!!",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost: 4, // keep hashing fast in tests
		},
	}
	return NewService(db, cfg), db
}

func TestRegister(t *testing.T) {
	svc, _ := newUserService(t)

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Jane Buyer",
		Email:    "Jane@Example.COM",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", resp.User.Email, "email is stored lowercase")
	assert.NotEqual(t, "secret123", resp.User.Password, "password is never stored in the clear")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.False(t, resp.User.IsAdmin)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Register(&RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{Name: "Other", Email: "JANE@example.com", Password: "secret456"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newUserService(t)
	_, err := svc.Register(&RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := svc.Login(&LoginRequest{Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotNil(t, resp.User.LastLoginAt)

	_, err = svc.Login(&LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSaveAddress_CreateThenReplace(t *testing.T) {
	svc, db := newUserService(t)
	reg, err := svc.Register(&RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)
	userID := reg.User.ID

	first, err := svc.SaveAddress(userID, &SaveAddressRequest{
		FullName: "Jane Buyer", StreetAddress: "1 Main St",
		City: "Springfield", PostalCode: "12345", Country: "us",
	})
	require.NoError(t, err)
	assert.Equal(t, "US", first.Country, "country code is uppercased")

	second, err := svc.SaveAddress(userID, &SaveAddressRequest{
		FullName: "Jane Buyer", StreetAddress: "2 Oak Ave",
		City: "Shelbyville", PostalCode: "54321", Country: "US",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "replacement keeps the same row")

	// Exactly one address per user.
	var count int64
	require.NoError(t, db.Model(&Address{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	u, err := svc.GetUser(userID)
	require.NoError(t, err)
	require.NotNil(t, u.Address)
	assert.Equal(t, "2 Oak Ave", u.Address.StreetAddress)
}

func TestSetPaymentMethod(t *testing.T) {
	svc, _ := newUserService(t)
	reg, err := svc.Register(&RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.SetPaymentMethod(reg.User.ID, PaymentMethodCashOnDelivery))

	u, err := svc.GetUser(reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCashOnDelivery, u.PaymentMethod)

	assert.ErrorIs(t, svc.SetPaymentMethod(reg.User.ID, "Bitcoin"), ErrInvalidPaymentMethod)
	assert.ErrorIs(t, svc.SetPaymentMethod(9999, PaymentMethodPayPal), ErrNotFound)
}
