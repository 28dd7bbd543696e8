// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/account"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CheckoutHandler handles the checkout wizard endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	config          *config.Config
}

// NewCheckoutHandler wires the checkout service from its collaborators
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) (*CheckoutHandler, error) {
	gateway, err := payment.NewStripeGateway(cfg)
	if err != nil {
		return nil, err
	}

	checkoutService := checkout.NewService(
		cfg,
		checkout.NewRedisSessionStore(redisClient, cfg.Commerce.CheckoutSessionTTL),
		cart.NewService(db, redisClient, cfg),
		account.NewService(db, cfg),
		account.NewAddressService(db, cfg),
		coupon.NewService(db, cfg),
		order.NewService(db, cfg),
		shipping.NewProvider(cfg),
		gateway,
	)

	return &CheckoutHandler{
		checkoutService: checkoutService,
		config:          cfg,
	}, nil
}

func (h *CheckoutHandler) userID(c *gin.Context) (uint, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	return userID, true
}

// Start opens or resumes a checkout session
func (h *CheckoutHandler) Start(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	summary, err := h.checkoutService.Start(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout started",
		"data":    summary,
	})
}

// GetSummary returns the current checkout state with live totals
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	summary, err := h.checkoutService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		if err == checkout.ErrSessionNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "No checkout in progress"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summary,
	})
}

// SetShippingAddress selects the shipping (and optionally billing) address
func (h *CheckoutHandler) SetShippingAddress(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req struct {
		ShippingAddressID uint `json:"shipping_address_id" binding:"required"`
		BillingAddressID  uint `json:"billing_address_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	summary, err := h.checkoutService.SetShippingAddress(c.Request.Context(), userID, req.ShippingAddressID, req.BillingAddressID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping address selected",
		"data":    summary,
	})
}

// FetchRates quotes carrier rates for the selected address
func (h *CheckoutHandler) FetchRates(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	summary, err := h.checkoutService.FetchRates(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping rates fetched",
		"data":    summary,
	})
}

// SelectRate picks a carrier option from the fetched rates
func (h *CheckoutHandler) SelectRate(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req struct {
		ServiceCode string `json:"service_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	summary, err := h.checkoutService.SelectRate(c.Request.Context(), userID, req.ServiceCode)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping option selected",
		"data":    summary,
	})
}

// SetGovernmentDeclaration records the government purchase toggle
func (h *CheckoutHandler) SetGovernmentDeclaration(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req checkout.GovernmentDeclaration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	summary, err := h.checkoutService.SetGovernmentDeclaration(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Government declaration recorded",
		"data":    summary,
	})
}

// SetPaymentMethod chooses card or net terms
func (h *CheckoutHandler) SetPaymentMethod(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req struct {
		Method   string `json:"method" binding:"required"`
		SaveCard bool   `json:"save_card"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	summary, err := h.checkoutService.SetPaymentMethod(c.Request.Context(), userID, req.Method, req.SaveCard)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment method selected",
		"data":    summary,
	})
}

// CreatePaymentIntent opens the card payment intent for this session
func (h *CheckoutHandler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	summary, err := h.checkoutService.EnsurePaymentIntent(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment intent ready",
		"data":    summary,
	})
}

// ApplyCoupon validates and applies a discount code
func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	summary, validation, err := h.checkoutService.ApplyCoupon(c.Request.Context(), userID, req.Code)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"summary":    summary,
			"validation": validation,
		},
	})
}

// RemoveCoupon clears the applied coupon
func (h *CheckoutHandler) RemoveCoupon(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	summary, err := h.checkoutService.RemoveCoupon(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon removed",
		"data":    summary,
	})
}

// Advance moves the wizard to the next step
func (h *CheckoutHandler) Advance(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	summary, err := h.checkoutService.Advance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summary,
	})
}

// Back moves the wizard to the previous step
func (h *CheckoutHandler) Back(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	summary, err := h.checkoutService.Back(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summary,
	})
}

// PlaceOrder runs the order placement pipeline from the review step
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	result, err := h.checkoutService.PlaceOrder(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if result.PaymentFailed {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"message": "Order created but payment failed",
			"data":    result,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}
