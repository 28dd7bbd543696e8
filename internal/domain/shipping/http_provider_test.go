package shipping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func httpProviderFor(t *testing.T, handler http.HandlerFunc) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.External.Shipping.RateAPIURL = srv.URL
	cfg.External.Shipping.RateAPIKey = "test-key"
	cfg.External.Shipping.Timeout = 2 * time.Second
	return NewHTTPProvider(cfg)
}

func quoteRequest() *RateRequest {
	return &RateRequest{
		ToAddress: Destination{
			AddressLine1: "1 Main St",
			City:         "Austin",
			PostalCode:   "78701",
			Country:      "US",
		},
		Items:       []RateItem{{ProductID: 1, Quantity: 2}},
		TotalWeight: 1000,
	}
}

func TestHTTPProviderGetRates_SortsCheapestFirst(t *testing.T) {
	var gotAuth, gotPath string
	provider := httpProviderFor(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates":[
			{"carrier":"FedEx","service_code":"overnight","cost":3900,"estimated_days":"1"},
			{"carrier":"USPS","service_code":"ground","cost":1500,"estimated_days":"3-5"}
		]}`))
	})

	rates, err := provider.GetRates(context.Background(), quoteRequest())

	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "ground", rates[0].ServiceCode)
	assert.Equal(t, int64(1500), rates[0].Cost)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "/rates", gotPath)
}

func TestHTTPProviderGetRates_ErrorStatus(t *testing.T) {
	provider := httpProviderFor(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate engine unavailable", http.StatusServiceUnavailable)
	})

	rates, err := provider.GetRates(context.Background(), quoteRequest())

	require.Error(t, err)
	assert.Nil(t, rates)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPProviderGetRates_MalformedResponse(t *testing.T) {
	provider := httpProviderFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	rates, err := provider.GetRates(context.Background(), quoteRequest())

	require.Error(t, err)
	assert.Nil(t, rates)
}
