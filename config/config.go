// Package config loads the simulator settings from PAPERTRADER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
)

// Prefix is prepended to every environment variable name.
const Prefix = "PAPERTRADER_"

type Config struct {
	StateFile       string        `env:"STATE_FILE"`
	LogFile         string        `env:"LOG_FILE"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	CatalogSource   string        `env:"CATALOG_SOURCE"`
	CoinGeckoURL    string        `env:"COINGECKO_URL" envDefault:"https://api.coingecko.com/api/v3"`
	YahooURL        string        `env:"YAHOO_URL" envDefault:"https://query1.finance.yahoo.com"`
	StartingBalance float64       `env:"STARTING_BALANCE" envDefault:"10000"`
	MessageTTL      time.Duration `env:"MESSAGE_TTL" envDefault:"3s"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s"`
	Market          string        `env:"MARKET" envDefault:"crypto"`
	PrecheckCash    bool          `env:"PRECHECK_CASH" envDefault:"false"`
}

// Load parses the environment and fills the file locations left empty with paths under
// DefaultDir.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.StartingBalance < 0 {
		return cfg, fmt.Errorf("%sSTARTING_BALANCE must not be negative, got %v", Prefix, cfg.StartingBalance)
	}
	if cfg.MessageTTL <= 0 {
		return cfg, fmt.Errorf("%sMESSAGE_TTL must be positive, got %v", Prefix, cfg.MessageTTL)
	}

	if cfg.StateFile == "" || cfg.LogFile == "" {
		dir, err := DefaultDir()
		if err != nil {
			return cfg, err
		}
		if cfg.StateFile == "" {
			cfg.StateFile = filepath.Join(dir, "state.json")
		}
		if cfg.LogFile == "" {
			cfg.LogFile = filepath.Join(dir, "papertrader.log")
		}
	}

	return cfg, nil
}

// DefaultDir returns ~/.config/papertrader.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "papertrader"), nil
}

// Balance returns the starting balance as a decimal.
func (c Config) Balance() decimal.Decimal {
	return decimal.NewFromFloat(c.StartingBalance)
}
