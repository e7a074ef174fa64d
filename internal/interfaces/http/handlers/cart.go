// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, cfg),
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	identity := h.identity(c)

	cartResponse, err := h.cartService.GetCart(identity)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Cart retrieved successfully", cartResponse)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	identity := h.identity(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	cartResponse, err := h.cartService.AddItem(identity, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Item added to cart successfully", cartResponse)
}

// RemoveItem handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	identity := h.identity(c)

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid product ID")
		return
	}

	cartResponse, err := h.cartService.RemoveItem(identity, uint(productID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Item removed from cart successfully", cartResponse)
}

// identity resolves the cart owner: the authenticated user when present,
// otherwise the anonymous session cookie.
func (h *CartHandler) identity(c *gin.Context) cart.Identity {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return cart.Identity{UserID: &userID}
	}
	return cart.Identity{SessionID: h.getOrCreateSessionID(c)}
}

// getOrCreateSessionID reads the session cart cookie, minting a fresh one
// when absent.
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	cookieName := h.config.Security.SessionCookieName

	if sessionID, err := c.Cookie(cookieName); err == nil && sessionID != "" {
		return sessionID
	}

	sessionID := uuid.NewString()
	maxAge := int(h.config.Security.SessionCookieTTL.Seconds())
	c.SetCookie(cookieName, sessionID, maxAge, "/", "", false, true)
	return sessionID
}
