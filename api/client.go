package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"papertrader/logger"
)

const userAgent = "PaperTrader/1.0"

// NewHTTPClient returns a client with the given timeout; zero means no timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// GetJSON performs a GET request and decodes the JSON body into v.
// Requests are logged at debug level to the logger carried by ctx.
func GetJSON(ctx context.Context, client *http.Client, endpoint string, v interface{}) error {
	log := logger.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("host", req.URL.Host).Str("path", req.URL.Path).Msg("API request failed")
		return err
	}
	defer resp.Body.Close()

	log.Debug().
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API request")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error %d from %s: %s", resp.StatusCode, req.URL.Host, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response from %s: %w", req.URL.Host, err)
	}
	return nil
}
