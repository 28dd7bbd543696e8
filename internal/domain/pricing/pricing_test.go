// internal/domain/pricing/pricing_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/domain/account"
)

func baseInput() Input {
	return Input{
		Lines: []Line{
			{ProductID: 1, Quantity: 2, Prices: UnitPrices{Base: 10000, Sale: 9000}},
		},
		AccountType:          account.TypeB2C,
		ShippingCost:         1500,
		FallbackShippingCost: 1500,
		TaxRate:              0.08,
	}
}

func TestComputeTotals_B2CRetail(t *testing.T) {
	// basePrice 100.00, salePrice 90.00, qty 2, flat shipping 15.00,
	// free-shipping threshold 200.00 not met
	in := baseInput()
	in.FreeShippingThreshold = 20000

	got := ComputeTotals(in)

	assert.Equal(t, int64(18000), got.Subtotal)
	assert.Equal(t, int64(1440), got.Tax) // 8% of 180.00
	assert.Equal(t, int64(1500), got.Shipping)
	assert.Equal(t, int64(20940), got.Total)
	assert.False(t, got.GovernmentPricing)
	assert.Zero(t, got.GovernmentSavings)
}

func TestComputeTotals_B2BWholesale(t *testing.T) {
	in := baseInput()
	in.AccountType = account.TypeB2B
	in.Lines[0].Prices.Wholesale = 7000

	got := ComputeTotals(in)

	assert.Equal(t, int64(14000), got.Subtotal)
	assert.Equal(t, int64(0), got.Tax)
	assert.Equal(t, int64(1500), got.Shipping)
	assert.Equal(t, int64(15500), got.Total)
}

func TestComputeTotals_B2BWholesaleIgnoresRetailPrices(t *testing.T) {
	// Wholesale subtotal must not depend on base/sale values.
	in := baseInput()
	in.AccountType = account.TypeB2B
	in.Lines[0].Prices = UnitPrices{Base: 10000, Sale: 9000, Wholesale: 7000}
	first := ComputeTotals(in)

	in.Lines[0].Prices = UnitPrices{Base: 99900, Sale: 12345, Wholesale: 7000}
	second := ComputeTotals(in)

	assert.Equal(t, first.Subtotal, second.Subtotal)
	assert.Equal(t, int64(14000), second.Subtotal)
}

func TestComputeTotals_GSAAccount(t *testing.T) {
	in := baseInput()
	in.AccountType = account.TypeGSA
	in.Lines[0].Prices.GSA = 8000

	got := ComputeTotals(in)

	assert.Equal(t, int64(16000), got.Subtotal)
	assert.Equal(t, int64(0), got.Tax)
	assert.Equal(t, int64(16000+1500), got.Total)
	assert.True(t, got.GovernmentPricing)
	// Savings reporting is suppressed for native GSA accounts.
	assert.Zero(t, got.GovernmentSavings)
}

func TestComputeTotals_GovernmentAccountTaxExempt(t *testing.T) {
	for _, at := range []account.Type{account.TypeGSA, account.TypeGovernment} {
		in := baseInput()
		in.AccountType = at
		got := ComputeTotals(in)
		assert.Zero(t, got.Tax, "account type %s must be tax exempt", at)
	}
}

func TestComputeTotals_GovernmentBuyerToggle(t *testing.T) {
	in := baseInput()
	in.Lines[0].Prices.GSA = 8000

	regular := ComputeTotals(in)

	in.GovernmentBuyer = true
	toggled := ComputeTotals(in)

	assert.Less(t, toggled.Subtotal, regular.Subtotal)
	assert.Equal(t, int64(16000), toggled.Subtotal)
	assert.Equal(t, int64(2000), toggled.GovernmentSavings) // 180.00 retail vs 160.00 gov
	assert.Zero(t, toggled.Tax)
}

func TestComputeTotals_GovernmentToggleWithoutGSAPrice(t *testing.T) {
	in := baseInput()
	in.GovernmentBuyer = true

	got := ComputeTotals(in)

	// No government tier offered: retail price applies, tax exemption still does.
	assert.Equal(t, int64(18000), got.Subtotal)
	assert.Zero(t, got.GovernmentSavings)
	assert.Zero(t, got.Tax)
}

func TestComputeTotals_CouponDiscount(t *testing.T) {
	in := baseInput()
	in.FreeShippingThreshold = 20000
	in.CouponDiscount = 2000

	got := ComputeTotals(in)

	// 209.40 from the base scenario minus the flat 20.00 coupon; the
	// taxable amount is unchanged.
	assert.Equal(t, int64(2000), got.Discount)
	assert.Equal(t, int64(1440), got.Tax)
	assert.Equal(t, int64(18940), got.Total)
}

func TestComputeTotals_DiscountClampedToSubtotal(t *testing.T) {
	in := baseInput()
	in.CouponDiscount = 99999999

	got := ComputeTotals(in)

	assert.Equal(t, got.Subtotal, got.Discount)
	assert.Equal(t, got.Shipping+got.Tax, got.Total)
	assert.GreaterOrEqual(t, got.Total, int64(0))
}

func TestComputeTotals_FreeShippingThresholdMet(t *testing.T) {
	in := baseInput()
	in.FreeShippingThreshold = 15000

	got := ComputeTotals(in)

	assert.Equal(t, int64(0), got.Shipping)
}

func TestComputeTotals_FallbackShippingWhenNoRateLoaded(t *testing.T) {
	in := baseInput()
	in.ShippingCost = NoShippingRate

	got := ComputeTotals(in)

	assert.Equal(t, int64(1500), got.Shipping)
}

func TestComputeTotals_RoundTripIdentity(t *testing.T) {
	cases := []Input{
		baseInput(),
		func() Input {
			in := baseInput()
			in.AccountType = account.TypeB2B
			in.Lines[0].Prices.Wholesale = 7000
			in.CouponDiscount = 500
			return in
		}(),
		func() Input {
			in := baseInput()
			in.GovernmentBuyer = true
			in.Lines[0].Prices.GSA = 8000
			in.FreeShippingThreshold = 10000
			return in
		}(),
	}

	for _, in := range cases {
		got := ComputeTotals(in)
		assert.Equal(t, got.Subtotal-got.Discount+got.Shipping+got.Tax, got.Total)
	}
}

func TestComputeTotals_Deterministic(t *testing.T) {
	in := baseInput()
	in.Lines = append(in.Lines, Line{ProductID: 2, Quantity: 3, Prices: UnitPrices{Base: 2500, GSA: 2000}})
	in.GovernmentBuyer = true
	in.CouponDiscount = 1000

	first := ComputeTotals(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeTotals(in))
	}
}

func TestUnitPrice_TierPriority(t *testing.T) {
	prices := UnitPrices{Base: 10000, Sale: 9000, Wholesale: 7000, GSA: 8000}

	assert.Equal(t, int64(7000), UnitPrice(prices, account.TypeB2B, false))
	assert.Equal(t, int64(7000), UnitPrice(prices, account.TypeVolumeBuyer, false))
	assert.Equal(t, int64(8000), UnitPrice(prices, account.TypeGSA, false))
	assert.Equal(t, int64(8000), UnitPrice(prices, account.TypeGovernment, false))
	assert.Equal(t, int64(8000), UnitPrice(prices, account.TypeB2C, true))
	assert.Equal(t, int64(9000), UnitPrice(prices, account.TypeB2C, false))

	noSale := UnitPrices{Base: 10000}
	assert.Equal(t, int64(10000), UnitPrice(noSale, account.TypeB2C, false))

	// B2B falls through to retail when no wholesale tier exists.
	noWholesale := UnitPrices{Base: 10000, Sale: 9000, GSA: 8000}
	assert.Equal(t, int64(9000), UnitPrice(noWholesale, account.TypeB2B, false))
}

func TestPriceTier(t *testing.T) {
	prices := UnitPrices{Base: 10000, Sale: 9000, Wholesale: 7000, GSA: 8000}

	assert.Equal(t, "wholesale", PriceTier(prices, account.TypeB2B, false))
	assert.Equal(t, "gsa", PriceTier(prices, account.TypeB2C, true))
	assert.Equal(t, "sale", PriceTier(prices, account.TypeB2C, false))
	assert.Equal(t, "base", PriceTier(UnitPrices{Base: 100}, account.TypeB2C, false))
}

func TestComputeTotals_VolumeBuyerTaxed(t *testing.T) {
	in := baseInput()
	in.AccountType = account.TypeVolumeBuyer
	in.Lines[0].Prices.Wholesale = 7000

	got := ComputeTotals(in)

	assert.Equal(t, int64(14000), got.Subtotal)
	assert.Equal(t, int64(1120), got.Tax) // wholesale pricing, still taxable
}
