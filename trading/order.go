// Package trading validates and executes simulated buy and sell orders.
package trading

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"papertrader/portfolio"
	"papertrader/pricing"
)

var (
	ErrInvalidInput         = errors.New("invalid symbol or amount")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrPriceFetch           = errors.New("price fetch failed")
	ErrNotSaved             = errors.New("trade not saved")
)

// maxAmountExponent bounds the decimal exponent of an amount. Formatting a decimal costs
// time and memory proportional to its exponent.
const maxAmountExponent = 1000

// Order is a request to trade Amount units of Symbol on Market.
type Order struct {
	Side   portfolio.Side
	Symbol string
	Amount decimal.Decimal
	Market pricing.Market
}

func (o Order) String() string {
	return fmt.Sprintf("%s %s %s (%s)", o.Side, o.Amount, o.Symbol, o.Market)
}

// NormalizeSymbol trims and upper-cases a user supplied symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ParseOrder builds an Order from text fields. Both the terminal UI and the CLI go through
// it, so they reject the same input.
func ParseOrder(side portfolio.Side, symbol, amount string, market pricing.Market) (Order, error) {
	order := Order{Side: side, Symbol: NormalizeSymbol(symbol), Market: market}

	qty, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return order, fmt.Errorf("%w: amount %q", ErrInvalidInput, amount)
	}
	order.Amount = qty

	if err := order.validate(); err != nil {
		return order, err
	}
	return order, nil
}

func (o Order) validate() error {
	if o.Side != portfolio.Buy && o.Side != portfolio.Sell {
		return fmt.Errorf("%w: side %q", ErrInvalidInput, o.Side)
	}
	if o.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidInput)
	}
	// checked before the amount is ever printed
	if exp := o.Amount.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return fmt.Errorf("%w: amount out of range", ErrInvalidInput)
	}
	// the amount must be a finite, non-zero float64, as the browser version parsed it
	if f := o.Amount.InexactFloat64(); f <= 0 || math.IsInf(f, 0) {
		return fmt.Errorf("%w: amount must be a finite positive number", ErrInvalidInput)
	}
	return nil
}
