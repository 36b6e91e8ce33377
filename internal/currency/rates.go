// Package currency converts expense amounts into a trip's base currency
// using a time-cached exchange-rate table.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RateProvider fetches an exchange-rate table for a base currency. The
// returned map holds, for each currency code, the units of that currency per
// one unit of the base currency.
type RateProvider interface {
	FetchRates(ctx context.Context, base string) (map[string]float64, error)
}

// HTTPProvider fetches rates from an open.er-api.com compatible endpoint
// (GET {baseURL}/{BASE} returning {"result": "success", "rates": {...}}).
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider with a bounded request timeout. The
// timeout is mandatory: a slow rate service must degrade, not block voting
// on expense submissions.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// FetchRates retrieves the rate table for the given base currency.
func (p *HTTPProvider) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate fetch failed: status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if body.Result != "success" || len(body.Rates) == 0 {
		return nil, fmt.Errorf("rate provider returned result %q", body.Result)
	}

	return body.Rates, nil
}
