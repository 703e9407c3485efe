// Package config loads and validates the venue configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/profitx/profitx/market"
)

// Config is the complete venue configuration.
type Config struct {
	Market  MarketConfig  `json:"market" yaml:"market"`
	Funding FundingConfig `json:"funding" yaml:"funding"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// MarketConfig describes the simulated market.
type MarketConfig struct {
	// TickInterval is the simulator cadence, e.g. "10s".
	TickInterval string        `json:"tick_interval" yaml:"tick_interval"`
	Assets       []AssetConfig `json:"assets" yaml:"assets"`
}

// AssetConfig describes one tradable symbol and its starting state.
type AssetConfig struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Name   string  `json:"name" yaml:"name"`
	Price  float64 `json:"price" yaml:"price"`
	Change float64 `json:"change,omitempty" yaml:"change,omitempty"`
}

// FundingConfig tunes the pending-request workflow.
type FundingConfig struct {
	// RevalidateOnApprove re-checks the balance when a withdrawal is
	// approved. Defaults to true; set false to reproduce the legacy
	// behavior where an approval may overdraw the account.
	RevalidateOnApprove bool `json:"revalidate_on_approve" yaml:"revalidate_on_approve"`
}

// JournalConfig tunes durability.
type JournalConfig struct {
	// DBPath is the SQLite database file. Empty disables persistence.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Default returns the venue's stock configuration: the original three
// markets with their launch prices, a 10 second tick, strict
// withdrawal approvals and a local database file.
func Default() *Config {
	return &Config{
		Market: MarketConfig{
			TickInterval: "10s",
			Assets: []AssetConfig{
				{Symbol: "btc", Name: "Bitcoin", Price: 41250.75, Change: 2.35},
				{Symbol: "xau", Name: "Gold", Price: 1985.40, Change: -0.85},
				{Symbol: "nft", Name: "NFT Index", Price: 3245.60, Change: 5.20},
			},
		},
		Funding: FundingConfig{
			RevalidateOnApprove: true,
		},
		Journal: JournalConfig{
			DBPath: "./profitx.sqlite",
		},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file, layered
// over Default(): fields absent from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if _, err := c.Market.Interval(); err != nil {
		return err
	}

	if len(c.Market.Assets) == 0 {
		return fmt.Errorf("market.assets must list at least one asset")
	}

	seen := map[string]bool{}
	for _, asset := range c.Market.Assets {
		if asset.Symbol == "" {
			return fmt.Errorf("market.assets: symbol is required")
		}
		if seen[asset.Symbol] {
			return fmt.Errorf("market.assets: duplicate symbol %q", asset.Symbol)
		}
		seen[asset.Symbol] = true

		if asset.Name == "" {
			return fmt.Errorf("market.assets[%s]: name is required", asset.Symbol)
		}
		if asset.Price <= 0 {
			return fmt.Errorf("market.assets[%s]: price must be positive", asset.Symbol)
		}
	}

	return nil
}

// Interval parses the simulator cadence.
func (m MarketConfig) Interval() (time.Duration, error) {
	if m.TickInterval == "" {
		return market.DefaultTickInterval, nil
	}

	interval, err := time.ParseDuration(m.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("market.tick_interval: %w", err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("market.tick_interval must be positive")
	}

	return interval, nil
}

// Seeds converts the asset list into market store seeds.
func (m MarketConfig) Seeds() []market.Seed {
	seeds := make([]market.Seed, len(m.Assets))
	for i, asset := range m.Assets {
		seeds[i] = market.Seed{
			Symbol: asset.Symbol,
			Name:   asset.Name,
			Price:  asset.Price,
			Change: asset.Change,
			Mode:   market.ModeAuto,
		}
	}

	return seeds
}
