// internal/interfaces/http/handlers/user.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// UserHandler handles user profile endpoints
type UserHandler struct {
	userService *user.Service
	config      *config.Config
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB, cfg *config.Config) *UserHandler {
	return &UserHandler{
		userService: user.NewService(db, cfg),
		config:      cfg,
	}
}

// SaveAddress handles PUT /users/address
func (h *UserHandler) SaveAddress(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Authentication required"})
		return
	}

	var req user.SaveAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	address, err := h.userService.SaveAddress(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Shipping address saved successfully", address)
}

// SetPaymentMethodRequest represents the payment method selection form
type SetPaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// SetPaymentMethod handles PUT /users/payment-method
func (h *UserHandler) SetPaymentMethod(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Authentication required"})
		return
	}

	var req SetPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	if err := h.userService.SetPaymentMethod(userID, user.PaymentMethod(req.PaymentMethod)); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Payment method updated successfully", gin.H{
		"payment_method": req.PaymentMethod,
	})
}
