// internal/interfaces/http/handlers/respond_test.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRespondError(t *testing.T, err error) (int, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, err)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestRespondError_PreconditionsCarryRedirects(t *testing.T) {
	tests := []struct {
		err      error
		redirect string
	}{
		{order.ErrCartEmpty, "/cart"},
		{order.ErrMissingAddress, "/shipping-address"},
		{order.ErrMissingPaymentMethod, "/payment-method"},
	}

	for _, tt := range tests {
		code, resp := doRespondError(t, tt.err)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.False(t, resp.Success)
		assert.Equal(t, tt.redirect, resp.RedirectTo)
		assert.Equal(t, tt.err.Error(), resp.Message)
	}
}

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{order.ErrNotFound, http.StatusNotFound},
		{cart.ErrItemNotFound, http.StatusNotFound},
		{user.ErrEmailTaken, http.StatusConflict},
		{order.ErrAlreadyPaid, http.StatusConflict},
		{user.ErrInvalidCredentials, http.StatusUnauthorized},
		{cart.ErrOutOfStock, http.StatusBadRequest},
		{payment.ErrCaptureIncomplete, http.StatusBadRequest},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		code, resp := doRespondError(t, tt.err)
		assert.Equal(t, tt.code, code, "error %v", tt.err)
		assert.False(t, resp.Success)
	}
}

func TestRespondError_WrappedErrorsStillMap(t *testing.T) {
	wrapped := &payment.ProviderError{StatusCode: 422, Message: "UNPROCESSABLE_ENTITY"}

	code, resp := doRespondError(t, wrapped)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Payment provider error", resp.Message)
}

func TestRespondError_InternalDetailsAreNotLeaked(t *testing.T) {
	_, resp := doRespondError(t, errors.New("pq: connection refused at 10.0.0.5"))
	assert.Equal(t, "Internal server error", resp.Message)
	assert.NotContains(t, resp.Message, "10.0.0.5")
}
