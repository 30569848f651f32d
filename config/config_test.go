package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.App.Name)
	assert.Equal(t, "memory", cfg.Database.Type)
	assert.False(t, cfg.UsesMySQL())
	assert.Equal(t, 50, cfg.Newsletter.BatchSize)
	assert.Equal(t, time.Second, cfg.Newsletter.BatchDelay)
	assert.Equal(t, "NGN", cfg.Payment.Paystack.Currency)
	assert.Equal(t, 3, cfg.Media.MaxImages)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Auth.RequireEmailVerification)
	assert.Empty(t, cfg.Auth.AdminSignupKey)
	assert.True(t, cfg.Server.AuthRateLimit.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  env: production
database:
  type: mysql
  port: "3307"
newsletter:
  batch_size: 10
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("STOREFRONT_PAYMENT_PAYSTACK_SECRET_KEY", "sk_test_env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.UsesMySQL())
	assert.Equal(t, "3307", cfg.Database.Port)
	assert.Equal(t, 10, cfg.Newsletter.BatchSize)
	assert.Equal(t, "sk_test_env", cfg.Payment.Paystack.SecretKey)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
