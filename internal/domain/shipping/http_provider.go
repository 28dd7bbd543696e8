// internal/domain/shipping/http_provider.go
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/your-org/storefront-backend/internal/config"
)

// HTTPProvider quotes rates from an external rate-shopping API over
// HTTP JSON.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPProvider creates a provider against the configured rate API
func NewHTTPProvider(cfg *config.Config) *HTTPProvider {
	return &HTTPProvider{
		baseURL: cfg.External.Shipping.RateAPIURL,
		apiKey:  cfg.External.Shipping.RateAPIKey,
		httpClient: &http.Client{
			Timeout: cfg.External.Shipping.Timeout,
		},
	}
}

type rateAPIResponse struct {
	Rates []RateOption `json:"rates"`
}

// GetRates requests quotes from the rate API, cheapest first
func (p *HTTPProvider) GetRates(ctx context.Context, req *RateRequest) ([]RateOption, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/rates", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rate API call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate API response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("rate API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed rateAPIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rate API response: %w", err)
	}

	SortCheapestFirst(parsed.Rates)
	return parsed.Rates, nil
}
