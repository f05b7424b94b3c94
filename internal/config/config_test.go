package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresCredentialsForEnabledExchange(t *testing.T) {
	cfg := Defaults()
	cfg.Max.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max: access_key and secret_key are required")
}

func TestValidateRequiresHoyaLoginTriple(t *testing.T) {
	cfg := Defaults()
	cfg.Hoya.Enabled = true
	cfg.Hoya.Account = "trader"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hoya: account and password are required")
	assert.Contains(t, err.Error(), "hoya: totp_secret is required")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Bito.Enabled = true
	cfg.Trade.FeeRate = "not-a-number"
	cfg.Trade.TargetFeeCost = "0"
	cfg.LogLevel = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bito: access_key and secret_key are required")
	assert.Contains(t, err.Error(), `fee_rate "not-a-number" is not a valid decimal`)
	assert.Contains(t, err.Error(), "target_fee_cost must be > 0")
	assert.Contains(t, err.Error(), `unknown log_level "verbose"`)
}

func TestEnabledExchangesKeepsFixedOrder(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, cfg.EnabledExchanges())

	cfg.Hoya.Enabled = true
	cfg.Max.Enabled = true
	assert.Equal(t, []string{"Max", "Hoya"}, cfg.EnabledExchanges())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
log_level = "debug"

[max]
enabled = true
access_key = "file-access"
secret_key = "file-secret"

[trade]
fee_rate = "0.0002"
settle_delay = "2s"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	t.Setenv("SLIPBOT_MAX_SECRET_KEY", "env-secret")
	t.Setenv("SLIPBOT_TRADE_MONITOR_TIMEOUT", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Max.Enabled)
	assert.Equal(t, "file-access", cfg.Max.AccessKey)
	assert.Equal(t, "env-secret", cfg.Max.SecretKey, "env overrides the file value")
	assert.Equal(t, "0.0002", cfg.Trade.FeeRate)
	assert.Equal(t, 2*time.Second, cfg.Trade.SettleDelay.Duration)
	assert.Equal(t, 90*time.Second, cfg.Trade.MonitorTimeout.Duration)
	assert.Equal(t, "0.252", cfg.Trade.TargetFeeCost, "untouched fields keep defaults")
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Max.SecretKey = "max-secret"
	cfg.Hoya.Password = "hunter2"
	cfg.Hoya.TOTPSecret = "JBSWY3DP"
	cfg.Line.ChannelToken = "channel-token"

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Max.SecretKey)
	assert.Equal(t, "***", out.Hoya.Password)
	assert.Equal(t, "***", out.Hoya.TOTPSecret)
	assert.Equal(t, "***", out.Line.ChannelToken)
	assert.Equal(t, "max-secret", cfg.Max.SecretKey, "original is untouched")
}
