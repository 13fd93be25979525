// Package config defines all configuration for a roboquant run. Config
// is loaded from a YAML file (default: configs/config.yaml) with
// sensitive/overridable fields settable via ROBOQUANT_* environment
// variables, following the teacher's viper + mapstructure + explicit
// Validate lifecycle.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file structure.
type Config struct {
	BaseCurrency    string          `mapstructure:"base_currency"`
	ChannelCapacity int             `mapstructure:"channel_capacity"`
	FX              FXConfig        `mapstructure:"fx"`
	Account         AccountConfig   `mapstructure:"account"`
	Converter       ConverterConfig `mapstructure:"converter"`
	Store           StoreConfig     `mapstructure:"store"`
	Logging         LoggingConfig   `mapstructure:"logging"`
	Dashboard       DashboardConfig `mapstructure:"dashboard"`
}

// FXConfig seeds the process-wide FX registry with static rates at
// startup. Pair keys are formatted "FROM/TO", e.g. "EUR/USD".
type FXConfig struct {
	Rates map[string]float64 `mapstructure:"rates"`
}

// AccountConfig selects and parameterizes the account model.
//
//   - Model: "cash" or "margin".
//   - Leverage: buying-power multiplier, only meaningful when Model == "margin".
//   - InitialDeposit: seed balance in BaseCurrency.
type AccountConfig struct {
	Model          string  `mapstructure:"model"`
	Leverage       float64 `mapstructure:"leverage"`
	InitialDeposit float64 `mapstructure:"initial_deposit"`
}

// ConverterConfig tunes the Flex signal-to-order converter and the
// circuit breaker wrapping it.
//
//   - OrderPercentage: fraction of equity risked per order, default 1%.
//   - Shorting: whether SELL signals may open short positions.
//   - Fractions: decimal places for fractional sizing (0 = integer only).
//   - OneOrderOnly: at most one open order per asset.
//   - SafetyMargin: fraction of buying power held back as a cushion.
//   - MinPrice: signals below this price are skipped.
//   - CircuitBreakerMaxOrders / CircuitBreakerWindow: rolling order-rate cap, 0 disables it.
type ConverterConfig struct {
	OrderPercentage         float64       `mapstructure:"order_percentage"`
	Shorting                bool          `mapstructure:"shorting"`
	Fractions               int32         `mapstructure:"fractions"`
	OneOrderOnly            bool          `mapstructure:"one_order_only"`
	SafetyMargin            float64       `mapstructure:"safety_margin"`
	MinPrice                float64       `mapstructure:"min_price"`
	EnableMetrics           bool          `mapstructure:"enable_metrics"`
	CircuitBreakerMaxOrders int           `mapstructure:"circuit_breaker_max_orders"`
	CircuitBreakerWindow    time.Duration `mapstructure:"circuit_breaker_window"`
}

// StoreConfig configures the durable metrics journal.
type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DashboardConfig controls the read-only metrics/account query API.
type DashboardConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config from a YAML file with env var overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("ROBOQUANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_currency", "USD")
	v.SetDefault("channel_capacity", 100)
	v.SetDefault("account.model", "cash")
	v.SetDefault("account.initial_deposit", 1_000_000)
	v.SetDefault("converter.order_percentage", 0.01)
	v.SetDefault("converter.fractions", 0)
	v.SetDefault("converter.safety_margin", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("dashboard.enabled", false)
	v.SetDefault("dashboard.port", 8080)
}

// Validate checks all required fields and value ranges. Called once at
// construction; configuration errors are always fatal, never surfaced as
// a run-time REJECTED order (spec.md §7).
func (c *Config) Validate() error {
	if c.BaseCurrency == "" {
		return fmt.Errorf("base_currency is required")
	}
	if c.ChannelCapacity <= 0 {
		return fmt.Errorf("channel_capacity must be > 0")
	}
	switch c.Account.Model {
	case "cash":
	case "margin":
		if c.Account.Leverage <= 0 {
			return fmt.Errorf("account.leverage must be > 0 when account.model is margin")
		}
	default:
		return fmt.Errorf("account.model must be one of: cash, margin")
	}
	if c.Account.InitialDeposit < 0 {
		return fmt.Errorf("account.initial_deposit must be >= 0")
	}
	if c.Converter.OrderPercentage <= 0 || c.Converter.OrderPercentage > 1 {
		return fmt.Errorf("converter.order_percentage must be in (0, 1]")
	}
	if c.Converter.Fractions < 0 {
		return fmt.Errorf("converter.fractions must be >= 0")
	}
	if c.Converter.SafetyMargin < 0 || c.Converter.SafetyMargin >= 1 {
		return fmt.Errorf("converter.safety_margin must be in [0, 1)")
	}
	for pair := range c.FX.Rates {
		if !strings.Contains(pair, "/") {
			return fmt.Errorf("fx.rates key %q must be formatted FROM/TO", pair)
		}
	}
	return nil
}
