// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},
		&user.Address{},

		&product.Product{},

		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart ON cart_items(cart_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_paid ON orders(user_id, is_paid)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedTestUser(); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}

	if err := m.seedSampleProducts(); err != nil {
		return fmt.Errorf("failed to seed sample products: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedAdminUser creates the default admin user
func (m *Migration) seedAdminUser() error {
	var existing user.User
	err := m.db.Where("email = ?", "admin@example.com").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123456"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := user.User{
		Name:     "Admin User",
		Email:    "admin@example.com",
		Password: string(hashed),
		IsAdmin:  true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("👤 Admin user created: admin@example.com")
	return nil
}

// seedTestUser creates a regular user for development
func (m *Migration) seedTestUser() error {
	var existing user.User
	err := m.db.Where("email = ?", "user@example.com").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("user123456"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	testUser := user.User{
		Name:          "Test User",
		Email:         "user@example.com",
		Password:      string(hashed),
		PaymentMethod: user.PaymentMethodPayPal,
	}
	if err := m.db.Create(&testUser).Error; err != nil {
		return err
	}

	address := user.Address{
		UserID:        testUser.ID,
		FullName:      "Test User",
		StreetAddress: "123 Main Street",
		City:          "Anytown",
		PostalCode:    "12345",
		Country:       "US",
	}
	if err := m.db.Create(&address).Error; err != nil {
		return err
	}

	log.Println("👤 Test user created: user@example.com")
	return nil
}

// seedSampleProducts creates sample products for development
func (m *Migration) seedSampleProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []product.Product{
		{
			Name:        "Polo Sporting Stretch Shirt",
			Slug:        "polo-sporting-stretch-shirt",
			Category:    "Men's Dress Shirts",
			Brand:       "Polo",
			Description: "Classic fit stretch shirt with a comfortable feel",
			Image:       "/images/sample-products/p1-1.jpg",
			Price:       decimal.RequireFromString("59.99"),
			Stock:       5,
			Rating:      decimal.RequireFromString("4.5"),
			NumReviews:  10,
			IsFeatured:  true,
			Banner:      "/images/banner-1.jpg",
		},
		{
			Name:        "Brooks Brothers Long Sleeved Shirt",
			Slug:        "brooks-brothers-long-sleeved-shirt",
			Category:    "Men's Dress Shirts",
			Brand:       "Brooks Brothers",
			Description: "Timeless long sleeved shirt in premium cotton",
			Image:       "/images/sample-products/p2-1.jpg",
			Price:       decimal.RequireFromString("85.90"),
			Stock:       10,
			Rating:      decimal.RequireFromString("4.2"),
			NumReviews:  8,
			IsFeatured:  true,
			Banner:      "/images/banner-2.jpg",
		},
		{
			Name:        "Tommy Hilfiger Classic Fit Dress Shirt",
			Slug:        "tommy-hilfiger-classic-fit-dress-shirt",
			Category:    "Men's Dress Shirts",
			Brand:       "Tommy Hilfiger",
			Description: "Classic fit dress shirt for everyday wear",
			Image:       "/images/sample-products/p3-1.jpg",
			Price:       decimal.RequireFromString("99.95"),
			Stock:       0,
			Rating:      decimal.RequireFromString("4.9"),
			NumReviews:  3,
		},
		{
			Name:        "Calvin Klein Slim Fit Stretch Shirt",
			Slug:        "calvin-klein-slim-fit-stretch-shirt",
			Category:    "Men's Dress Shirts",
			Brand:       "Calvin Klein",
			Description: "Slim fit shirt with a touch of stretch",
			Image:       "/images/sample-products/p4-1.jpg",
			Price:       decimal.RequireFromString("39.95"),
			Stock:       10,
			Rating:      decimal.RequireFromString("3.6"),
			NumReviews:  5,
		},
		{
			Name:        "Polo Ralph Lauren Oxford Shirt",
			Slug:        "polo-ralph-lauren-oxford-shirt",
			Category:    "Men's Dress Shirts",
			Brand:       "Polo",
			Description: "Iconic oxford shirt in a relaxed fit",
			Image:       "/images/sample-products/p5-1.jpg",
			Price:       decimal.RequireFromString("79.99"),
			Stock:       6,
			Rating:      decimal.RequireFromString("4.7"),
			NumReviews:  18,
		},
	}

	for _, p := range products {
		if err := m.db.Create(&p).Error; err != nil {
			return err
		}
	}

	log.Printf("📦 Seeded %d sample products", len(products))
	return nil
}
