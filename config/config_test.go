package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "bolt", cfg.Storage.Driver)
	assert.Equal(t, "klar_settings_", cfg.Storage.SettingsPrefix)
	assert.Equal(t, 24*time.Hour, cfg.Session.Expiration.Duration)
	assert.True(t, cfg.Security.CSRF)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 8080

[storage]
driver = "redis"

[redis]
addr = "cache:6379"
db = 2

[session]
expiration = "2h"

[security]
csrf = false
rate_window = "30s"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 2*time.Hour, cfg.Session.Expiration.Duration)
	assert.False(t, cfg.Security.CSRF)
	assert.Equal(t, 30*time.Second, cfg.Security.RateWindow.Duration)
	// untouched keys keep their defaults
	assert.Equal(t, 100, cfg.Security.RateLimit)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
}

func TestLoadConfigRejectsInvalidFiles(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[server\nport ="))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "[storage]\ndriver = \"mongo\""))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "[session]\nexpiration = \"soon\""))
	assert.Error(t, err)
}

func TestValidateProductionSecret(t *testing.T) {
	cfg := Default()
	cfg.Server.Env = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}
