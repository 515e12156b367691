package util

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds everything tunable. Fee rates default to the Taiwan retail
// schedule: 0.1425% commission, 0.3% transaction tax on sells.
type Config struct {
	ApiPort int `yaml:"api_port"`

	Benchmark struct {
		Symbol      string `yaml:"symbol"`
		HistoryFile string `yaml:"history_file"`
	} `yaml:"benchmark"`

	Fees struct {
		CommissionRate decimal.Decimal `yaml:"commission_rate"`
		TaxRate        decimal.Decimal `yaml:"tax_rate"`
	} `yaml:"fees"`

	PriceCache struct {
		DbFile string `yaml:"db_file"`
	} `yaml:"price_cache"`

	NameMapFile string `yaml:"name_map_file"`
}

func defaultConfig() Config {
	cfg := Config{}
	cfg.ApiPort = 3009
	cfg.Benchmark.Symbol = "0050"
	cfg.Benchmark.HistoryFile = "data/0050-history.json"
	cfg.Fees.CommissionRate = decimal.NewFromFloat(0.001425)
	cfg.Fees.TaxRate = decimal.NewFromFloat(0.003)
	cfg.PriceCache.DbFile = "data/price-cache.db"
	cfg.NameMapFile = "data/stock-name-map.json"
	return cfg
}

// LoadConfig reads config.yaml, or the env-specific variant when BEAT_ENV
// is set. A missing file is not an error; defaults cover everything.
func LoadConfig() (*Config, error) {
	configFile := "config.yaml"
	if env := os.Getenv("BEAT_ENV"); env == "dev" || env == "test" {
		configFile = fmt.Sprintf("config-%s.yaml", env)
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configFile, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configFile, err)
	}

	if cfg.Fees.CommissionRate.IsNegative() || cfg.Fees.TaxRate.IsNegative() {
		return nil, fmt.Errorf("invalid configuration: fee rates must be >= 0")
	}

	return &cfg, nil
}
