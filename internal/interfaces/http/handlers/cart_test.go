// internal/interfaces/http/handlers/cart_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func testCartHandlerConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			SessionCookieName: "session_cart_id",
			SessionCookieTTL:  30 * 24 * time.Hour,
		},
	}
}

func TestGetOrCreateSessionID_MintsCookieOnce(t *testing.T) {
	h := &CartHandler{config: testCartHandlerConfig()}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/cart", nil)

	sessionID := h.getOrCreateSessionID(c)
	assert.NotEmpty(t, sessionID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "session_cart_id", cookie.Name)
	assert.Equal(t, sessionID, cookie.Value)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
}

func TestGetOrCreateSessionID_ReusesExistingCookie(t *testing.T) {
	h := &CartHandler{config: testCartHandlerConfig()}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/cart", nil)
	c.Request.AddCookie(&http.Cookie{Name: "session_cart_id", Value: "existing-session"})

	sessionID := h.getOrCreateSessionID(c)
	assert.Equal(t, "existing-session", sessionID)
	assert.Empty(t, w.Result().Cookies(), "no new cookie when one already exists")
}
