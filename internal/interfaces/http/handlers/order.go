// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, cfg *config.Config) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		config:       cfg,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Authentication required"})
		return
	}

	sessionID, _ := c.Cookie(h.config.Security.SessionCookieName)

	o, err := h.orderService.CreateOrder(userID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "Order created successfully", o)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid order ID")
		return
	}

	o, err := h.orderService.GetOrder(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	// Owners see their own orders; admins see all.
	if o.UserID != userID && !middleware.IsAdminFromContext(c) {
		c.JSON(http.StatusForbidden, Response{Success: false, Message: "Access denied"})
		return
	}

	respondOK(c, "Order retrieved successfully", o)
}

// GetMyOrders handles GET /orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Authentication required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	resp, err := h.orderService.GetUserOrders(userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Orders retrieved successfully", resp)
}

// GetAllOrders handles GET /admin/orders
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.orderService.GetOrders(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Orders retrieved successfully", resp)
}

// MarkDelivered handles PUT /admin/orders/:id/deliver
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid order ID")
		return
	}

	o, err := h.orderService.MarkDelivered(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Order marked as delivered", o)
}

// MarkPaid handles PUT /admin/orders/:id/pay for cash-on-delivery orders
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid order ID")
		return
	}

	settled, err := h.orderService.MarkPaidManually(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Order marked as paid", settled.Order)
}
