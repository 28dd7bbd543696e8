// internal/domain/shipping/rates.go

// Package shipping quotes carrier rates for a destination and cart.
// Rates are fetched fresh for every destination; nothing is cached
// across addresses.
package shipping

import (
	"context"
	"sort"
)

// Destination is the address rates are quoted against
type Destination struct {
	Name         string `json:"name,omitempty"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code" binding:"required"`
	Country      string `json:"country" binding:"required,len=2"`
}

// RateItem identifies one cart line for a rate quote
type RateItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// RateRequest is a quote request for one destination and cart
type RateRequest struct {
	ToAddress Destination `json:"to_address"`
	Items     []RateItem  `json:"cart_items"`

	// TotalWeight in grams, derived from the catalog by the caller.
	TotalWeight float64 `json:"total_weight,omitempty"`
}

// RateOption is a quoted carrier service, cost in cents
type RateOption struct {
	Carrier       string `json:"carrier"`
	ServiceCode   string `json:"service_code"`
	Cost          int64  `json:"cost"`
	EstimatedDays string `json:"estimated_days"`
}

// Provider quotes carrier rates for a destination
type Provider interface {
	GetRates(ctx context.Context, req *RateRequest) ([]RateOption, error)
}

// SortCheapestFirst orders rate options by ascending cost in place.
// The first option is the one checkout auto-selects.
func SortCheapestFirst(rates []RateOption) {
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].Cost < rates[j].Cost
	})
}
