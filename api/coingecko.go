package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const CoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient queries the free CoinGecko API. No API key is required.
type CoinGeckoClient struct {
	HTTPClient *http.Client
	BaseURL    string
}

func NewCoinGeckoClient(httpClient *http.Client, baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = CoinGeckoURL
	}
	return &CoinGeckoClient{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// SimplePrice returns the USD price of the coin with the given CoinGecko id.
// A response that does not carry the price yields 0 and no error.
func (c *CoinGeckoClient) SimplePrice(ctx context.Context, id string) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.BaseURL, url.QueryEscape(id))

	// {"bitcoin":{"usd":43250.5}}
	var geckoResponse map[string]map[string]float64
	if err := GetJSON(ctx, c.HTTPClient, endpoint, &geckoResponse); err != nil {
		return 0, err
	}

	priceData, exists := geckoResponse[id]
	if !exists {
		return 0, nil
	}
	return priceData["usd"], nil
}
