// internal/domain/shipping/static_provider.go
package shipping

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
)

// StaticProvider serves a built-in rate table. It is used when no
// external rate API is configured, and keeps checkout working in
// development.
type StaticProvider struct{}

// NewStaticProvider creates the built-in rate provider
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

// NewProvider selects the rate provider based on configuration
func NewProvider(cfg *config.Config) Provider {
	if cfg.External.Shipping.RateAPIURL != "" {
		return NewHTTPProvider(cfg)
	}
	return NewStaticProvider()
}

// GetRates returns the static rate table, cheapest first. Costs carry
// a surcharge of 100 cents per started kilogram of cart weight.
func (p *StaticProvider) GetRates(ctx context.Context, req *RateRequest) ([]RateOption, error) {
	if req.ToAddress.Country == "" {
		return nil, fmt.Errorf("destination country is required")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	surcharge := weightSurcharge(req.TotalWeight)

	rates := []RateOption{
		{
			Carrier:       "USPS",
			ServiceCode:   "ground",
			Cost:          1500 + surcharge,
			EstimatedDays: "5-7",
		},
		{
			Carrier:       "UPS",
			ServiceCode:   "second_day",
			Cost:          2500 + surcharge,
			EstimatedDays: "2-3",
		},
		{
			Carrier:       "FedEx",
			ServiceCode:   "overnight",
			Cost:          3900 + surcharge,
			EstimatedDays: "1",
		},
	}

	// International destinations only get the ground-equivalent service.
	if req.ToAddress.Country != "US" {
		rates = []RateOption{
			{
				Carrier:       "USPS",
				ServiceCode:   "intl_priority",
				Cost:          4500 + surcharge,
				EstimatedDays: "7-14",
			},
		}
	}

	SortCheapestFirst(rates)
	return rates, nil
}

func weightSurcharge(grams float64) int64 {
	if grams <= 0 {
		return 0
	}
	kg := int64(grams) / 1000
	if int64(grams)%1000 > 0 {
		kg++
	}
	return kg * 100
}
