// Package session assembles the store, portfolio, price resolver and trade engine that
// the terminal UI and the CLI share.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"papertrader/api"
	"papertrader/config"
	"papertrader/logger"
	"papertrader/portfolio"
	"papertrader/pricing"
	"papertrader/storage"
	"papertrader/trading"
)

type Session struct {
	Config    config.Config
	Store     storage.Store
	Portfolio *portfolio.Portfolio
	Catalog   *pricing.Catalog
	Resolver  *pricing.Resolver
	Engine    *trading.Engine

	logger zerolog.Logger
}

// Open loads the state file named by cfg and wires the components together.
// A corrupt state file is logged and replaced by a fresh account on the next save.
// The crypto catalog is left unloaded; call LoadCatalog.
func Open(cfg config.Config, logger zerolog.Logger) (*Session, error) {
	store, err := storage.OpenFile(cfg.StateFile)
	if errors.Is(err, storage.ErrCorrupt) {
		logger.Warn().Err(err).Msg("Ignoring unreadable state file")
	} else if err != nil {
		return nil, fmt.Errorf("failed to open state: %w", err)
	}

	return New(cfg, store, api.NewHTTPClient(cfg.HTTPTimeout), logger), nil
}

// New wires a session around an already opened store.
func New(cfg config.Config, store storage.Store, httpClient *http.Client, logger zerolog.Logger) *Session {
	p := portfolio.Load(store, cfg.Balance())
	catalog := pricing.NewCatalog(httpClient)
	resolver := pricing.NewResolver(
		catalog,
		api.NewCoinGeckoClient(httpClient, cfg.CoinGeckoURL),
		api.NewYahooClient(httpClient, cfg.YahooURL),
	)
	engine := trading.NewEngine(p, store, resolver, trading.Config{PrecheckCash: cfg.PrecheckCash}, logger)

	logger.Debug().
		Str("balance", p.Balance().String()).
		Int("holdings", len(p.Holdings())).
		Int("history", len(p.History())).
		Msg("Portfolio loaded")

	return &Session{
		Config:    cfg,
		Store:     store,
		Portfolio: p,
		Catalog:   catalog,
		Resolver:  resolver,
		Engine:    engine,
		logger:    logger,
	}
}

// Context returns ctx carrying the session logger, so the price clients log their
// requests to it.
func (s *Session) Context(ctx context.Context) context.Context {
	return logger.WithContext(ctx, s.logger)
}

// LoadCatalog loads the crypto catalog from the configured source. A failure is logged
// and leaves every crypto symbol unknown.
func (s *Session) LoadCatalog(ctx context.Context) error {
	ctx = s.Context(ctx)
	if err := s.Catalog.Load(ctx, s.Config.CatalogSource); err != nil {
		s.logger.Error().Err(err).Str("source", s.Config.CatalogSource).Msg("Failed to load coin list")
		return err
	}
	s.logger.Debug().Int("symbols", s.Catalog.Len()).Msg("Coin list loaded")
	return nil
}

// Market returns the configured default market.
func (s *Session) Market() pricing.Market {
	if s.Config.Market == string(pricing.Stock) {
		return pricing.Stock
	}
	return pricing.Crypto
}
