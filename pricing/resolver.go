// Package pricing resolves a symbol and market to a live USD price.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownSymbol    = errors.New("unknown symbol")
	ErrPriceUnavailable = errors.New("price unavailable")
)

// Market selects the price source. Only Crypto is special; every other value is a stock.
type Market string

const (
	Crypto Market = "crypto"
	Stock  Market = "stock"
)

// Toggle returns the other market.
func (m Market) Toggle() Market {
	if m == Crypto {
		return Stock
	}
	return Crypto
}

// CryptoQuoter fetches a USD price by provider id; 0 means the response had no price.
type CryptoQuoter interface {
	SimplePrice(ctx context.Context, id string) (float64, error)
}

// StockQuoter fetches a USD price by ticker; 0 means the response had no price.
type StockQuoter interface {
	RegularMarketPrice(ctx context.Context, symbol string) (float64, error)
}

// Resolver issues exactly one request per call and never caches.
type Resolver struct {
	catalog *Catalog
	crypto  CryptoQuoter
	stock   StockQuoter
}

func NewResolver(catalog *Catalog, crypto CryptoQuoter, stock StockQuoter) *Resolver {
	return &Resolver{catalog: catalog, crypto: crypto, stock: stock}
}

// Price returns a positive USD price for symbol in market.
func (r *Resolver) Price(ctx context.Context, symbol string, market Market) (decimal.Decimal, error) {
	if market == Crypto {
		return r.cryptoPrice(ctx, symbol)
	}
	return r.stockPrice(ctx, symbol)
}

func (r *Resolver) cryptoPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id, ok := r.catalog.Lookup(symbol)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownSymbol, strings.ToUpper(symbol))
	}

	price, err := r.crypto.SimplePrice(ctx, id)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price fetch failed for %s: %w", ErrPriceUnavailable, id, err)
	}
	if price <= 0 {
		return decimal.Zero, fmt.Errorf("%w: price fetch failed for %s", ErrPriceUnavailable, id)
	}
	return decimal.NewFromFloat(price), nil
}

func (r *Resolver) stockPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, err := r.stock.RegularMarketPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid symbol or price unavailable for %s: %w", ErrPriceUnavailable, symbol, err)
	}
	if price <= 0 {
		return decimal.Zero, fmt.Errorf("%w: invalid symbol or price unavailable for %s", ErrPriceUnavailable, symbol)
	}
	return decimal.NewFromFloat(price), nil
}
