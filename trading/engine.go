package trading

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"papertrader/portfolio"
	"papertrader/pricing"
	"papertrader/storage"
)

// PriceSource resolves a live USD price. *pricing.Resolver implements it.
type PriceSource interface {
	Price(ctx context.Context, symbol string, market pricing.Market) (decimal.Decimal, error)
}

type Config struct {
	// PrecheckCash rejects a buy before the price lookup when there is no cash at all.
	PrecheckCash bool
}

// Result describes an executed trade.
type Result struct {
	Transaction portfolio.Transaction
	Total       decimal.Decimal
}

// Engine executes orders against a portfolio one at a time.
type Engine struct {
	mu        sync.Mutex
	portfolio *portfolio.Portfolio
	store     storage.Store
	prices    PriceSource
	config    Config
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEngine creates a new trade engine
func NewEngine(p *portfolio.Portfolio, store storage.Store, prices PriceSource, config Config, logger zerolog.Logger) *Engine {
	return &Engine{
		portfolio: p,
		store:     store,
		prices:    prices,
		config:    config,
		logger:    logger.With().Str("component", "trading").Logger(),
		now:       time.Now,
	}
}

func (e *Engine) Portfolio() *portfolio.Portfolio {
	return e.portfolio
}

// Execute validates and applies order. Checks run in a fixed order and stop at the first
// failure: input, holdings (sell), price, balance (buy). A failed order changes nothing.
//
// Orders are serialized, so a trade started while another is in flight sees its result.
// The price lookup runs under the same lock: a slow lookup holds later orders until it
// answers or ctx ends.
// When the trade applies but the store write fails, Execute returns the Result together
// with an error wrapping ErrNotSaved.
func (e *Engine) Execute(ctx context.Context, order Order) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order.Symbol = NormalizeSymbol(order.Symbol)
	if err := order.validate(); err != nil {
		e.logger.Debug().Err(err).Str("symbol", order.Symbol).Msg("Order rejected")
		return Result{}, err
	}

	log := e.logger.With().
		Str("side", string(order.Side)).
		Str("symbol", order.Symbol).
		Str("amount", order.Amount.String()).
		Str("market", string(order.Market)).
		Logger()

	if order.Side == portfolio.Sell {
		held, _ := e.portfolio.Holding(order.Symbol)
		if held.LessThan(order.Amount) {
			log.Info().Str("held", held.String()).Msg("Not enough holdings to sell")
			return Result{}, fmt.Errorf("%w: have %s %s", ErrInsufficientHoldings, held, order.Symbol)
		}
	}

	if order.Side == portfolio.Buy && e.config.PrecheckCash && !e.portfolio.Balance().IsPositive() {
		log.Info().Msg("No cash, skipping price lookup")
		return Result{}, fmt.Errorf("%w: balance is zero", ErrInsufficientBalance)
	}

	price, err := e.prices.Price(ctx, order.Symbol, order.Market)
	if err != nil {
		log.Warn().Err(err).Msg("Price lookup failed")
		return Result{}, fmt.Errorf("%w: %w", ErrPriceFetch, err)
	}

	total := order.Amount.Mul(price)
	if order.Side == portfolio.Buy {
		if balance := e.portfolio.Balance(); total.GreaterThan(balance) {
			log.Info().Str("total", total.String()).Str("balance", balance.String()).Msg("Not enough cash to buy")
			return Result{}, fmt.Errorf("%w: need %s, have %s", ErrInsufficientBalance, total.StringFixed(2), balance.StringFixed(2))
		}
	}

	tx := e.portfolio.ApplyTrade(order.Side, order.Symbol, order.Amount, price, e.now())
	result := Result{Transaction: tx, Total: total}

	if err := e.portfolio.Save(e.store); err != nil {
		log.Error().Err(err).Str("id", tx.ID).Msg("Trade applied but state was not saved")
		return result, fmt.Errorf("%w: %w", ErrNotSaved, err)
	}

	log.Info().
		Str("id", tx.ID).
		Str("price", price.String()).
		Str("total", total.StringFixed(2)).
		Msg("Trade executed")
	return result, nil
}

// Reset restores the portfolio to balance in cash and saves it.
func (e *Engine) Reset(balance decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.portfolio.Reset(balance)
	if err := e.portfolio.Save(e.store); err != nil {
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	e.logger.Info().Str("balance", balance.String()).Msg("Portfolio reset")
	return nil
}
