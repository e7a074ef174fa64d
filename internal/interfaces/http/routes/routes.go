// internal/interfaces/http/routes/routes.go
package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group onto the given router group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	logger := newLogger(cfg)

	// Shared services. Order and payment compose the cart service so
	// order creation clears the cart in the same transaction.
	cartService := cart.NewService(db, cfg)
	orderService := order.NewService(db, cfg, cartService, logger)
	receiptService := email.NewReceiptService(cfg)
	paypalClient := payment.NewPayPalClient(cfg, payment.NewRedisTokenStore(redisClient))
	paymentService := payment.NewService(paypalClient, orderService, receiptService, logger)

	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(orderService, cfg)
	paymentHandler := handlers.NewPaymentHandler(paymentService, orderService, cfg)

	// Authentication
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}

	// User profile
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.PUT("/address", userHandler.SaveAddress)
		users.PUT("/payment-method", userHandler.SetPaymentMethod)
	}

	// Product browsing
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
	}

	// Cart works for guest sessions and authenticated users alike
	cartRoutes := rg.Group("/cart")
	cartRoutes.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.POST("/items", cartHandler.AddItem)
		cartRoutes.DELETE("/items/:productId", cartHandler.RemoveItem)
	}

	// Orders
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetMyOrders)
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("/:id", orderHandler.GetOrder)
	}

	// Payments
	payments := rg.Group("/payments")
	payments.Use(middleware.AuthMiddleware(cfg))
	{
		payments.POST("/orders/:id", paymentHandler.CreateProviderOrder)
		payments.POST("/orders/:id/capture", paymentHandler.CaptureProviderOrder)
	}

	// Admin
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/orders", orderHandler.GetAllOrders)
		admin.PUT("/orders/:id/deliver", orderHandler.MarkDelivered)
		admin.PUT("/orders/:id/pay", orderHandler.MarkPaid)
		admin.PUT("/products/:id/stock", productHandler.UpdateStock)
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
