// internal/domain/pricing/pricing.go

// Package pricing computes checkout totals for a cart. It is a pure
// function of its input so the same cart, account tier, toggle state,
// shipping cost and coupon always produce the same totals.
package pricing

import (
	"math"

	"github.com/your-org/storefront-backend/internal/domain/account"
)

// NoShippingRate marks that no carrier rate has loaded yet; the
// configured fallback cost applies until one does.
const NoShippingRate int64 = -1

// UnitPrices holds the tiered unit prices of a product in cents.
// A zero value means the tier is not offered.
type UnitPrices struct {
	Base      int64 `json:"base"`
	Sale      int64 `json:"sale"`
	Wholesale int64 `json:"wholesale"`
	GSA       int64 `json:"gsa"`
}

// Line is one cart line presented for pricing
type Line struct {
	ProductID uint       `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Prices    UnitPrices `json:"prices"`
}

// Input carries everything ComputeTotals depends on
type Input struct {
	Lines           []Line
	AccountType     account.Type
	GovernmentBuyer bool // self-declared toggle on B2C checkouts

	// ShippingCost is the selected rate option's cost, or NoShippingRate
	// when rates have not loaded.
	ShippingCost int64

	// CouponDiscount is the server-validated flat discount in cents.
	CouponDiscount int64

	// FreeShippingThreshold of 0 means free shipping is not configured.
	FreeShippingThreshold int64
	FallbackShippingCost  int64
	TaxRate               float64
}

// Totals is the derived pricing breakdown, in cents
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`

	// GovernmentSavings is reported only when government pricing was
	// applied through the self-declared toggle rather than a native
	// GSA/GOVERNMENT account. The savings are already reflected in
	// Subtotal and are never double-counted as a discount.
	GovernmentSavings int64 `json:"government_savings,omitempty"`
	GovernmentPricing bool  `json:"government_pricing"`
}

// UnitPrice selects the effective unit price for one product.
// Priority: wholesale for B2B-tier accounts, then government price for
// GSA/GOVERNMENT accounts or a declared government buyer, then sale,
// then base.
func UnitPrice(p UnitPrices, accountType account.Type, governmentBuyer bool) int64 {
	if accountType.WholesalePriced() && p.Wholesale > 0 {
		return p.Wholesale
	}
	if (accountType.GovernmentPriced() || governmentBuyer) && p.GSA > 0 {
		return p.GSA
	}
	return retailUnitPrice(p)
}

// retailUnitPrice is the price without the government branch, used as
// the baseline when reporting government savings.
func retailUnitPrice(p UnitPrices) int64 {
	if p.Sale > 0 {
		return p.Sale
	}
	return p.Base
}

// PriceTier names the tier UnitPrice selected, for order line auditing
func PriceTier(p UnitPrices, accountType account.Type, governmentBuyer bool) string {
	if accountType.WholesalePriced() && p.Wholesale > 0 {
		return "wholesale"
	}
	if (accountType.GovernmentPriced() || governmentBuyer) && p.GSA > 0 {
		return "gsa"
	}
	if p.Sale > 0 {
		return "sale"
	}
	return "base"
}

// ComputeTotals derives the full pricing breakdown for a cart.
//
// When the coupon discount exceeds the subtotal it is clamped to the
// subtotal, so the total can never go negative.
func ComputeTotals(in Input) Totals {
	governmentPricing := in.AccountType.GovernmentPriced() || in.GovernmentBuyer

	var subtotal, retailSubtotal int64
	for _, line := range in.Lines {
		qty := int64(line.Quantity)
		if qty < 1 {
			qty = 1
		}
		subtotal += UnitPrice(line.Prices, in.AccountType, in.GovernmentBuyer) * qty
		retailSubtotal += UnitPrice(line.Prices, in.AccountType, false) * qty
	}

	discount := in.CouponDiscount
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	// Tax is assessed on the undiscounted subtotal: retailer-funded
	// coupons do not reduce the taxable amount.
	var tax int64
	if !in.AccountType.TaxExempt() && !in.GovernmentBuyer {
		tax = int64(math.Round(float64(subtotal) * in.TaxRate))
	}

	shipping := in.FallbackShippingCost
	if in.ShippingCost >= 0 {
		shipping = in.ShippingCost
	}
	if in.FreeShippingThreshold > 0 && subtotal >= in.FreeShippingThreshold {
		shipping = 0
	}

	totals := Totals{
		Subtotal:          subtotal,
		Discount:          discount,
		Shipping:          shipping,
		Tax:               tax,
		Total:             subtotal - discount + shipping + tax,
		GovernmentPricing: governmentPricing,
	}

	// Savings are only surfaced for the self-declared toggle; native
	// GSA/GOVERNMENT accounts always see government pricing so there is
	// no regular baseline to compare against.
	if in.GovernmentBuyer && !in.AccountType.GovernmentPriced() && retailSubtotal > subtotal {
		totals.GovernmentSavings = retailSubtotal - subtotal
	}

	return totals
}
