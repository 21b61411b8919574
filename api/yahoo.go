package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

const YahooURL = "https://query1.finance.yahoo.com"

// quotePricePath selects the price of the first quote in a v7 quote response:
//
//	{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":189.84}],"error":null}}
const quotePricePath = "$.quoteResponse.result[0].regularMarketPrice"

// YahooClient reads stock quotes from Yahoo Finance.
type YahooClient struct {
	HTTPClient *http.Client
	BaseURL    string
}

func NewYahooClient(httpClient *http.Client, baseURL string) *YahooClient {
	if baseURL == "" {
		baseURL = YahooURL
	}
	return &YahooClient{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// RegularMarketPrice returns the last regular market price for symbol.
// A response without a result or without a numeric price yields 0 and no error.
func (c *YahooClient) RegularMarketPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.BaseURL, url.QueryEscape(symbol))

	var jobj any
	if err := GetJSON(ctx, c.HTTPClient, endpoint, &jobj); err != nil {
		return 0, err
	}

	jval, err := jsonpath.Get(quotePricePath, jobj)
	if err != nil {
		// unknown key or index out of range: the quote is not there
		return 0, nil
	}
	// jsonpath may hand back a single element list
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return 0, nil
		}
		jval = jlist[0]
	}

	price, ok := jval.(float64)
	if !ok {
		return 0, nil
	}
	return price, nil
}
