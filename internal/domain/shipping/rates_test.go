// internal/domain/shipping/rates_test.go
package shipping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortCheapestFirst(t *testing.T) {
	rates := []RateOption{
		{Carrier: "FedEx", ServiceCode: "overnight", Cost: 3900},
		{Carrier: "USPS", ServiceCode: "ground", Cost: 1500},
		{Carrier: "UPS", ServiceCode: "second_day", Cost: 2500},
	}

	SortCheapestFirst(rates)

	assert.Equal(t, "ground", rates[0].ServiceCode)
	assert.Equal(t, "second_day", rates[1].ServiceCode)
	assert.Equal(t, "overnight", rates[2].ServiceCode)
}

func TestStaticProvider_DomesticRates(t *testing.T) {
	provider := NewStaticProvider()

	rates, err := provider.GetRates(context.Background(), &RateRequest{
		ToAddress: Destination{
			AddressLine1: "1600 Pennsylvania Ave NW",
			City:         "Washington",
			State:        "DC",
			PostalCode:   "20500",
			Country:      "US",
		},
		Items: []RateItem{{ProductID: 1, Quantity: 2}},
	})

	require.NoError(t, err)
	require.Len(t, rates, 3)
	for i := 1; i < len(rates); i++ {
		assert.LessOrEqual(t, rates[i-1].Cost, rates[i].Cost)
	}
	assert.Equal(t, int64(1500), rates[0].Cost)
}

func TestStaticProvider_WeightSurcharge(t *testing.T) {
	provider := NewStaticProvider()

	req := &RateRequest{
		ToAddress:   Destination{AddressLine1: "1 Main St", City: "Austin", PostalCode: "78701", Country: "US"},
		Items:       []RateItem{{ProductID: 1, Quantity: 1}},
		TotalWeight: 2400, // 2.4kg rounds up to 3kg
	}

	rates, err := provider.GetRates(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, int64(1500+300), rates[0].Cost)
}

func TestStaticProvider_InternationalSingleService(t *testing.T) {
	provider := NewStaticProvider()

	rates, err := provider.GetRates(context.Background(), &RateRequest{
		ToAddress: Destination{AddressLine1: "10 Downing St", City: "London", PostalCode: "SW1A 2AA", Country: "GB"},
		Items:     []RateItem{{ProductID: 1, Quantity: 1}},
	})

	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "intl_priority", rates[0].ServiceCode)
}

func TestStaticProvider_EmptyCartRejected(t *testing.T) {
	provider := NewStaticProvider()

	_, err := provider.GetRates(context.Background(), &RateRequest{
		ToAddress: Destination{AddressLine1: "1 Main St", City: "Austin", PostalCode: "78701", Country: "US"},
	})

	assert.Error(t, err)
}
