// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *payment.Service
	orderService   *order.Service
	config         *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service, orderService *order.Service, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		orderService:   orderService,
		config:         cfg,
	}
}

// authorizeOrderAccess verifies the caller owns the order before any
// provider call. Admins may act on any order. On failure the response is
// already written.
func (h *PaymentHandler) authorizeOrderAccess(c *gin.Context, orderID uint) bool {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Authentication required"})
		return false
	}

	o, err := h.orderService.GetOrder(orderID)
	if err != nil {
		respondError(c, err)
		return false
	}

	if o.UserID != userID && !middleware.IsAdminFromContext(c) {
		c.JSON(http.StatusForbidden, Response{Success: false, Message: "Access denied"})
		return false
	}
	return true
}

// CreateProviderOrder handles POST /payments/orders/:id
func (h *PaymentHandler) CreateProviderOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid order ID")
		return
	}

	if !h.authorizeOrderAccess(c, uint(orderID)) {
		return
	}

	intent, err := h.paymentService.CreateProviderOrder(c.Request.Context(), uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "Payment created successfully", intent)
}

// CaptureRequest carries the provider-side order to capture
type CaptureRequest struct {
	ProviderOrderID string `json:"provider_order_id" binding:"required"`
}

// CaptureProviderOrder handles POST /payments/orders/:id/capture
func (h *PaymentHandler) CaptureProviderOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid order ID")
		return
	}

	if !h.authorizeOrderAccess(c, uint(orderID)) {
		return
	}

	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	o, err := h.paymentService.CaptureProviderOrder(c.Request.Context(), uint(orderID), req.ProviderOrderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Payment captured successfully", o)
}
