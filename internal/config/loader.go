package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SLIPBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SLIPBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Max ──
	setBool(&cfg.Max.Enabled, "SLIPBOT_MAX_ENABLED")
	setStr(&cfg.Max.BaseURL, "SLIPBOT_MAX_BASE_URL")
	setStr(&cfg.Max.AccessKey, "SLIPBOT_MAX_ACCESS_KEY")
	setStr(&cfg.Max.SecretKey, "SLIPBOT_MAX_SECRET_KEY")

	// ── Bito ──
	setBool(&cfg.Bito.Enabled, "SLIPBOT_BITO_ENABLED")
	setStr(&cfg.Bito.BaseURL, "SLIPBOT_BITO_BASE_URL")
	setStr(&cfg.Bito.AccessKey, "SLIPBOT_BITO_ACCESS_KEY")
	setStr(&cfg.Bito.SecretKey, "SLIPBOT_BITO_SECRET_KEY")

	// ── Hoya ──
	setBool(&cfg.Hoya.Enabled, "SLIPBOT_HOYA_ENABLED")
	setStr(&cfg.Hoya.BaseURL, "SLIPBOT_HOYA_BASE_URL")
	setStr(&cfg.Hoya.Account, "SLIPBOT_HOYA_ACCOUNT")
	setStr(&cfg.Hoya.Password, "SLIPBOT_HOYA_PASSWORD")
	setStr(&cfg.Hoya.TOTPSecret, "SLIPBOT_HOYA_TOTP_SECRET")
	setBool(&cfg.Hoya.Headless, "SLIPBOT_HOYA_HEADLESS")

	// ── LINE ──
	setStr(&cfg.Line.ChannelToken, "SLIPBOT_LINE_CHANNEL_TOKEN")
	setStr(&cfg.Line.Recipient, "SLIPBOT_LINE_RECIPIENT")

	// ── Trade ──
	setStr(&cfg.Trade.Currency, "SLIPBOT_TRADE_CURRENCY")
	setStr(&cfg.Trade.QuoteCurrency, "SLIPBOT_TRADE_QUOTE_CURRENCY")
	setStr(&cfg.Trade.FeeRate, "SLIPBOT_TRADE_FEE_RATE")
	setStr(&cfg.Trade.TargetFeeCost, "SLIPBOT_TRADE_TARGET_FEE_COST")
	setStr(&cfg.Trade.PriceOffset, "SLIPBOT_TRADE_PRICE_OFFSET")
	setDuration(&cfg.Trade.SettleDelay, "SLIPBOT_TRADE_SETTLE_DELAY")
	setDuration(&cfg.Trade.MonitorInterval, "SLIPBOT_TRADE_MONITOR_INTERVAL")
	setDuration(&cfg.Trade.MonitorTimeout, "SLIPBOT_TRADE_MONITOR_TIMEOUT")
	setBool(&cfg.Trade.Parallel, "SLIPBOT_TRADE_PARALLEL")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "SLIPBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
