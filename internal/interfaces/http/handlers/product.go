// internal/interfaces/http/handlers/product.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	productService *product.Service
	config         *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(db *gorm.DB, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		productService: product.NewService(db, cfg),
		config:         cfg,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.productService.GetProducts(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Products retrieved successfully", resp)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid product ID")
		return
	}

	p, err := h.productService.GetProduct(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Product retrieved successfully", p)
}

// GetProductBySlug handles GET /products/slug/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.productService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Product retrieved successfully", p)
}

// UpdateStockRequest represents the admin stock adjustment form
type UpdateStockRequest struct {
	Stock int `json:"stock" binding:"min=0"`
}

// UpdateStock handles PUT /admin/products/:id/stock
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid product ID")
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data: "+err.Error())
		return
	}

	p, err := h.productService.UpdateStock(uint(id), req.Stock)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Stock updated successfully", p)
}
