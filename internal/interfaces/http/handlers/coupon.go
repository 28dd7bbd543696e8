// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"gorm.io/gorm"
)

// CouponHandler handles coupon validation endpoints
type CouponHandler struct {
	couponService *coupon.Service
	config        *config.Config
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(db *gorm.DB, cfg *config.Config) *CouponHandler {
	return &CouponHandler{
		couponService: coupon.NewService(db, cfg),
		config:        cfg,
	}
}

// Validate checks a coupon code against a subtotal. Invalid codes come
// back as 200 with valid=false so the frontend can show the reason.
func (h *CouponHandler) Validate(c *gin.Context) {
	var req coupon.ValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	validation, err := h.couponService.Validate(req.Code, req.Subtotal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": validation,
	})
}
