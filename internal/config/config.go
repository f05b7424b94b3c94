// Package config defines the top-level configuration for the slip bot and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SLIPBOT_* environment variables.
type Config struct {
	Max      MaxConfig   `toml:"max"`
	Bito     BitoConfig  `toml:"bito"`
	Hoya     HoyaConfig  `toml:"hoya"`
	Line     LineConfig  `toml:"line"`
	Trade    TradeConfig `toml:"trade"`
	LogLevel string      `toml:"log_level"`
}

// MaxConfig holds Max exchange API credentials.
type MaxConfig struct {
	Enabled   bool   `toml:"enabled"`
	BaseURL   string `toml:"base_url"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

// BitoConfig holds BitoPro exchange API credentials.
type BitoConfig struct {
	Enabled   bool   `toml:"enabled"`
	BaseURL   string `toml:"base_url"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

// HoyaConfig holds HoyaBit web-login credentials. Hoya has no trading API, so
// the client drives the web UI through a headless browser.
type HoyaConfig struct {
	Enabled    bool   `toml:"enabled"`
	BaseURL    string `toml:"base_url"`
	Account    string `toml:"account"`
	Password   string `toml:"password"`
	TOTPSecret string `toml:"totp_secret"`
	Headless   bool   `toml:"headless"`
}

// LineConfig holds LINE Messaging API push credentials. Missing values
// disable notification instead of failing the run.
type LineConfig struct {
	ChannelToken string `toml:"channel_token"`
	Recipient    string `toml:"recipient"`
}

// TradeConfig holds the round-trip sizing policy. Decimal-valued fields are
// TOML strings so amounts survive decoding exactly.
type TradeConfig struct {
	Currency        string   `toml:"currency"`
	QuoteCurrency   string   `toml:"quote_currency"`
	FeeRate         string   `toml:"fee_rate"`
	TargetFeeCost   string   `toml:"target_fee_cost"`
	PriceOffset     string   `toml:"price_offset"`
	SettleDelay     duration `toml:"settle_delay"`
	MonitorInterval duration `toml:"monitor_interval"`
	MonitorTimeout  duration `toml:"monitor_timeout"`
	Parallel        bool     `toml:"parallel"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "500ms", "60s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "1s" or "500ms".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Max: MaxConfig{
			BaseURL: "https://max-api.maicoin.com",
		},
		Bito: BitoConfig{
			BaseURL: "https://api.bitopro.com/v3",
		},
		Hoya: HoyaConfig{
			BaseURL:  "https://www.hoyabit.com",
			Headless: true,
		},
		Trade: TradeConfig{
			Currency:        "usdt",
			QuoteCurrency:   "twd",
			FeeRate:         "0.002",
			TargetFeeCost:   "0.252",
			PriceOffset:     "0.002",
			SettleDelay:     duration{time.Second},
			MonitorInterval: duration{500 * time.Millisecond},
			MonitorTimeout:  duration{60 * time.Second},
			Parallel:        false,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// EnabledExchanges returns the display names of the exchanges selected for
// this run, in the fixed execution order.
func (c *Config) EnabledExchanges() []string {
	var names []string
	if c.Max.Enabled {
		names = append(names, "Max")
	}
	if c.Bito.Enabled {
		names = append(names, "Bito")
	}
	if c.Hoya.Enabled {
		names = append(names, "Hoya")
	}
	return names
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found. Missing credentials for an
// enabled exchange are fatal; LINE credentials are not, since a run without
// notification is still a valid run.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Max.Enabled {
		if c.Max.BaseURL == "" {
			errs = append(errs, "max: base_url must not be empty when enabled")
		}
		if c.Max.AccessKey == "" || c.Max.SecretKey == "" {
			errs = append(errs, "max: access_key and secret_key are required when enabled")
		}
	}

	if c.Bito.Enabled {
		if c.Bito.BaseURL == "" {
			errs = append(errs, "bito: base_url must not be empty when enabled")
		}
		if c.Bito.AccessKey == "" || c.Bito.SecretKey == "" {
			errs = append(errs, "bito: access_key and secret_key are required when enabled")
		}
	}

	if c.Hoya.Enabled {
		if c.Hoya.BaseURL == "" {
			errs = append(errs, "hoya: base_url must not be empty when enabled")
		}
		if c.Hoya.Account == "" || c.Hoya.Password == "" {
			errs = append(errs, "hoya: account and password are required when enabled")
		}
		if c.Hoya.TOTPSecret == "" {
			errs = append(errs, "hoya: totp_secret is required when enabled")
		}
	}

	if c.Trade.Currency == "" {
		errs = append(errs, "trade: currency must not be empty")
	}
	if c.Trade.QuoteCurrency == "" {
		errs = append(errs, "trade: quote_currency must not be empty")
	}
	errs = append(errs, validateDecimal("trade: fee_rate", c.Trade.FeeRate)...)
	errs = append(errs, validateDecimal("trade: target_fee_cost", c.Trade.TargetFeeCost)...)
	if _, err := decimal.NewFromString(c.Trade.PriceOffset); err != nil {
		errs = append(errs, fmt.Sprintf("trade: price_offset %q is not a valid decimal", c.Trade.PriceOffset))
	}
	if c.Trade.MonitorInterval.Duration <= 0 {
		errs = append(errs, "trade: monitor_interval must be > 0")
	}
	if c.Trade.MonitorTimeout.Duration <= 0 {
		errs = append(errs, "trade: monitor_timeout must be > 0")
	}
	if c.Trade.SettleDelay.Duration < 0 {
		errs = append(errs, "trade: settle_delay must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// validateDecimal checks that value parses as a strictly positive decimal.
func validateDecimal(field, value string) []string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return []string{fmt.Sprintf("%s %q is not a valid decimal", field, value)}
	}
	if !d.IsPositive() {
		return []string{fmt.Sprintf("%s must be > 0, got %s", field, value)}
	}
	return nil
}
