// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the referenced product does not exist
var ErrNotFound = errors.New("product not found")

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Category string `form:"category"`
	Featured bool   `form:"featured"`
}

// ProductListResponse represents a page of products
type ProductListResponse struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{})
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Featured {
		query = query.Where("is_featured = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductListResponse{
		Products:   products,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	if err := s.db.First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}

// GetProductBySlug retrieves a single product by slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var prod Product
	if err := s.db.Where("slug = ?", slug).First(&prod).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}

// UpdateStock sets the absolute stock level for a product (admin operation)
func (s *Service) UpdateStock(id uint, stock int) (*Product, error) {
	if stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative")
	}

	prod, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(prod).Update("stock", stock).Error; err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	prod.Stock = stock
	return prod, nil
}
