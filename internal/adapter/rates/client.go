// Package rates talks to the external exchange rate provider.
// The provider returns one flat table of currency-code -> rate relative
// to the reference unit; any transport or decoding failure is reported
// as a provider-unavailable condition by the caller.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Client fetches the full rate table from the provider over HTTP.
// The API key travels in the "apikey" header.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

// NewClient creates a provider client. httpClient may carry a timeout;
// if nil, http.DefaultClient is used.
func NewClient(httpClient *http.Client, url, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, url: url, apiKey: apiKey}
}

// FetchRates performs one GET against the provider and decodes the table.
func (c *Client) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rates: provider returned %d", resp.StatusCode)
	}

	rates := make(map[string]decimal.Decimal)
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return nil, fmt.Errorf("decode rate table: %w", err)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("decode rate table: empty response")
	}
	// Every rate divides another during pair derivation, so a zero or
	// negative entry makes the whole table unusable.
	for code, rate := range rates {
		if !rate.IsPositive() {
			return nil, fmt.Errorf("decode rate table: non-positive rate %s for %s", rate, code)
		}
	}
	return rates, nil
}
