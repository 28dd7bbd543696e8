// internal/interfaces/http/handlers/shipping.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

// ShippingHandler quotes standalone carrier rates outside checkout
type ShippingHandler struct {
	provider shipping.Provider
	config   *config.Config
}

// NewShippingHandler creates a new shipping handler
func NewShippingHandler(cfg *config.Config) *ShippingHandler {
	return &ShippingHandler{
		provider: shipping.NewProvider(cfg),
		config:   cfg,
	}
}

// GetRates quotes carrier rates for a destination and cart, cheapest first
func (h *ShippingHandler) GetRates(c *gin.Context) {
	var req shipping.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	rates, err := h.provider.GetRates(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch shipping rates"})
		return
	}

	shipping.SortCheapestFirst(rates)

	c.JSON(http.StatusOK, gin.H{
		"data": rates,
	})
}
