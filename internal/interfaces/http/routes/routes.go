// internal/interfaces/http/routes/routes.go
package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires all API v1 routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) error {
	setupAuthRoutes(rg, db, redisClient, cfg)
	setupAccountRoutes(rg, db, cfg)
	setupCatalogRoutes(rg, db, cfg)
	setupCartRoutes(rg, db, redisClient, cfg)
	if err := setupCheckoutRoutes(rg, db, redisClient, cfg); err != nil {
		return fmt.Errorf("failed to set up checkout routes: %w", err)
	}
	setupOrderRoutes(rg, db, cfg)
	setupPaymentRoutes(rg, db, cfg)
	setupShippingRoutes(rg, cfg)
	setupCouponRoutes(rg, db, cfg)
	return nil
}

func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
		}
	}
}

func setupAccountRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	addressHandler := handlers.NewAddressHandler(db, cfg)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/addresses", addressHandler.ListAddresses)
		users.POST("/addresses", addressHandler.CreateAddress)
		users.PUT("/addresses/:id", addressHandler.UpdateAddress)
		users.DELETE("/addresses/:id", addressHandler.DeleteAddress)
	}
}

func setupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, cfg)

	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("", catalogHandler.ListProducts)
		products.GET("/:id", catalogHandler.GetProduct)
		products.GET("/slug/:slug", catalogHandler.GetProductBySlug)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:product_id", cartHandler.UpdateItem)
		cart.DELETE("/items/:product_id", cartHandler.RemoveItem)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

func setupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) error {
	checkoutHandler, err := handlers.NewCheckoutHandler(db, redisClient, cfg)
	if err != nil {
		return err
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.POST("", checkoutHandler.Start)
		checkout.GET("", checkoutHandler.GetSummary)
		checkout.PUT("/shipping-address", checkoutHandler.SetShippingAddress)
		checkout.POST("/shipping-rates", checkoutHandler.FetchRates)
		checkout.PUT("/shipping-rate", checkoutHandler.SelectRate)
		checkout.PUT("/government", checkoutHandler.SetGovernmentDeclaration)
		checkout.PUT("/payment-method", checkoutHandler.SetPaymentMethod)
		checkout.POST("/payment-intent", checkoutHandler.CreatePaymentIntent)
		checkout.POST("/coupon", checkoutHandler.ApplyCoupon)
		checkout.DELETE("/coupon", checkoutHandler.RemoveCoupon)
		checkout.POST("/next", checkoutHandler.Advance)
		checkout.POST("/back", checkoutHandler.Back)
		checkout.POST("/place-order", checkoutHandler.PlaceOrder)
	}
	return nil
}

func setupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/number/:number", orderHandler.GetOrderByNumber)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/invoice", orderHandler.DownloadInvoice)
		orders.POST("/:id/confirmation", orderHandler.ResendConfirmation)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.PUT("/orders/:id/status", orderHandler.AdminUpdateStatus)
	}
}

func setupPaymentRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	paymentHandler := handlers.NewPaymentHandler(db, cfg)

	payment := rg.Group("/payment")
	{
		payment.GET("/config", paymentHandler.GetConfig)
	}

	// Webhooks are authenticated by signature, not by bearer token
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/stripe", paymentHandler.StripeWebhook)
	}
}

func setupShippingRoutes(rg *gin.RouterGroup, cfg *config.Config) {
	shippingHandler := handlers.NewShippingHandler(cfg)

	shipping := rg.Group("/shipping")
	{
		shipping.POST("/rates", shippingHandler.GetRates)
	}
}

func setupCouponRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	couponHandler := handlers.NewCouponHandler(db, cfg)

	coupons := rg.Group("/coupons")
	{
		coupons.POST("/validate", couponHandler.Validate)
	}
}
