// internal/domain/product/service_test.go
package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newProductService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Product{}))
	t.Cleanup(func() { sqlDB.Close() })

	svc := NewService(db, &config.Config{})

	seed := []Product{
		{Name: "Polo Shirt", Slug: "polo-shirt", Category: "shirts", Brand: "Polo",
			Price: decimal.RequireFromString("59.99"), Stock: 5, IsFeatured: true},
		{Name: "Hoodie", Slug: "hoodie", Category: "sweaters", Brand: "Lacoste",
			Price: decimal.RequireFromString("85.90"), Stock: 10},
		{Name: "Oxford Shirt", Slug: "oxford-shirt", Category: "shirts", Brand: "Polo",
			Price: decimal.RequireFromString("79.99"), Stock: 0},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}
	return svc
}

func TestGetProducts_Filters(t *testing.T) {
	svc := newProductService(t)

	all, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	shirts, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 10, Category: "shirts"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), shirts.Total)

	featured, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 10, Featured: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), featured.Total)
	assert.Equal(t, "polo-shirt", featured.Products[0].Slug)
}

func TestGetProductBySlug(t *testing.T) {
	svc := newProductService(t)

	p, err := svc.GetProductBySlug("hoodie")
	require.NoError(t, err)
	assert.Equal(t, "Hoodie", p.Name)

	_, err = svc.GetProductBySlug("no-such-product")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInStock(t *testing.T) {
	svc := newProductService(t)

	p, err := svc.GetProductBySlug("polo-shirt")
	require.NoError(t, err)
	assert.True(t, p.InStock(5))
	assert.False(t, p.InStock(6))

	empty, err := svc.GetProductBySlug("oxford-shirt")
	require.NoError(t, err)
	assert.False(t, empty.InStock(1))
}

func TestUpdateStock(t *testing.T) {
	svc := newProductService(t)

	p, err := svc.GetProductBySlug("oxford-shirt")
	require.NoError(t, err)

	updated, err := svc.UpdateStock(p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Stock)

	_, err = svc.UpdateStock(p.ID, -1)
	assert.Error(t, err)

	_, err = svc.UpdateStock(9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
