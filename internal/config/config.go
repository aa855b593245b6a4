// Package config provides configuration management for the condor analysis
// tool. All strategy constants are plain config fields so they can be tuned
// without a rebuild; the defaults are the canonical values the strategy was
// designed around.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Market   MarketConfig   `mapstructure:"market"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Paper    PaperConfig    `mapstructure:"paper"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// MarketConfig holds market data configuration.
type MarketConfig struct {
	Symbol       string  `mapstructure:"symbol"`
	HistoryDays  int     `mapstructure:"history_days"`
	DemoBase     float64 `mapstructure:"demo_base_price"`
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	DefaultIV    float64 `mapstructure:"default_iv"`
}

// StrategyConfig holds strike selection parameters.
type StrategyConfig struct {
	TargetDelta float64   `mapstructure:"target_delta"`
	ScanDeltas  []float64 `mapstructure:"scan_deltas"`
}

// PaperConfig holds paper trading configuration.
type PaperConfig struct {
	InitialCash float64 `mapstructure:"initial_cash"`
	DBPath      string  `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/condor-trader"
	}
	return filepath.Join(home, ".config", "condor-trader")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Market: MarketConfig{
			Symbol:       "SPY",
			HistoryDays:  60,
			DemoBase:     580.0,
			RiskFreeRate: 0.045,
			DefaultIV:    0.20,
		},
		Strategy: StrategyConfig{
			TargetDelta: 0.20,
			ScanDeltas:  []float64{0.15, 0.20, 0.30},
		},
		Paper: PaperConfig{
			InitialCash: 10000.0,
			DBPath:      filepath.Join(DefaultConfigDir(), "paper.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  true,
		},
	}
}

// Load loads configuration from the specified directory, falling back to
// defaults when no config file exists. If configDir is empty, the default
// config directory is used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("market.symbol", d.Market.Symbol)
	v.SetDefault("market.history_days", d.Market.HistoryDays)
	v.SetDefault("market.demo_base_price", d.Market.DemoBase)
	v.SetDefault("market.risk_free_rate", d.Market.RiskFreeRate)
	v.SetDefault("market.default_iv", d.Market.DefaultIV)
	v.SetDefault("strategy.target_delta", d.Strategy.TargetDelta)
	v.SetDefault("strategy.scan_deltas", d.Strategy.ScanDeltas)
	v.SetDefault("paper.initial_cash", d.Paper.InitialCash)
	v.SetDefault("paper.db_path", d.Paper.DBPath)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONDOR_SYMBOL"); v != "" {
		cfg.Market.Symbol = v
	}
	if v := os.Getenv("CONDOR_INITIAL_CASH"); v != "" {
		if cash, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Paper.InitialCash = cash
		}
	}
	if v := os.Getenv("CONDOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Market.HistoryDays < 1 {
		return fmt.Errorf("history_days must be at least 1")
	}
	if c.Market.RiskFreeRate < 0 || c.Market.RiskFreeRate > 1 {
		return fmt.Errorf("risk_free_rate must be between 0 and 1")
	}
	if c.Market.DefaultIV <= 0 {
		return fmt.Errorf("default_iv must be positive")
	}
	if c.Strategy.TargetDelta <= 0 || c.Strategy.TargetDelta >= 0.5 {
		return fmt.Errorf("target_delta must be between 0 and 0.5")
	}
	for _, d := range c.Strategy.ScanDeltas {
		if d <= 0 || d >= 0.5 {
			return fmt.Errorf("scan delta %.2f out of range (0, 0.5)", d)
		}
	}
	if c.Paper.InitialCash <= 0 {
		return fmt.Errorf("initial_cash must be positive")
	}
	return nil
}
