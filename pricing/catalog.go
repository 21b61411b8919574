package pricing

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"papertrader/api"
)

//go:embed coins.json
var embeddedCatalog []byte

// Catalog maps crypto tickers to CoinGecko ids.
// It is empty until Load succeeds and never changes afterwards.
type Catalog struct {
	mu         sync.RWMutex
	ids        map[string]string
	loaded     bool
	httpClient *http.Client
}

func NewCatalog(httpClient *http.Client) *Catalog {
	return &Catalog{httpClient: httpClient}
}

// NewCatalogFrom returns an already loaded catalog.
func NewCatalogFrom(ids map[string]string) *Catalog {
	c := &Catalog{}
	c.set(ids)
	return c
}

// Load reads the catalog from source: an http(s) URL, a file path, or the built-in list
// when source is empty. Loading an already loaded catalog is a no-op.
func (c *Catalog) Load(ctx context.Context, source string) error {
	if c.Loaded() {
		return nil
	}

	var ids map[string]string
	switch {
	case source == "":
		if err := json.Unmarshal(embeddedCatalog, &ids); err != nil {
			return fmt.Errorf("failed to parse built-in catalog: %w", err)
		}
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		client := c.httpClient
		if client == nil {
			client = http.DefaultClient
		}
		if err := api.GetJSON(ctx, client, source, &ids); err != nil {
			return fmt.Errorf("failed to load catalog %s: %w", source, err)
		}
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("failed to parse catalog %s: %w", source, err)
		}
	}

	c.set(ids)
	return nil
}

func (c *Catalog) set(ids map[string]string) {
	normalized := make(map[string]string, len(ids))
	for symbol, id := range ids {
		if id == "" {
			continue
		}
		normalized[strings.ToUpper(strings.TrimSpace(symbol))] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return
	}
	c.ids = normalized
	c.loaded = true
}

// Lookup returns the provider id for symbol, case-insensitively.
func (c *Catalog) Lookup(symbol string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.ids[strings.ToUpper(symbol)]
	return id, ok
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
