package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "ws://localhost:8000", config.Storage.Address)
	assert.Equal(t, "folio", config.Storage.Namespace)
	assert.Equal(t, "folio", config.Storage.Database)
	assert.False(t, config.IsProduction())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	content := `
environment = "production"

[server]
port = 9090

[clients.finnhub]
api_key = "file-key"
timeout = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.True(t, config.IsProduction())
	assert.Equal(t, "file-key", config.Clients.Finnhub.APIKey)
	assert.Equal(t, 5*time.Second, config.Clients.Finnhub.GetTimeout())

	// Unset values keep their defaults.
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 10, config.Clients.Finnhub.RateLimit)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig("/nonexistent/folio.toml")
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_PORT", "7070")
	t.Setenv("FOLIO_ENV", "production")
	t.Setenv("FOLIO_STORAGE_ADDRESS", "ws://db:8000")
	t.Setenv("FINNHUB_API_KEY", "env-key")
	t.Setenv("FOLIO_ADMIN_PASSWORD", "env-password")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.True(t, config.IsProduction())
	assert.Equal(t, "ws://db:8000", config.Storage.Address)
	assert.Equal(t, "env-key", config.Clients.Finnhub.APIKey)
	assert.Equal(t, "env-password", config.Auth.AdminPassword)
}

func TestLoadConfigInvalidPortIgnored(t *testing.T) {
	t.Setenv("FOLIO_PORT", "not-a-number")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
}

func TestGetTimeoutFallback(t *testing.T) {
	cfg := FinnhubConfig{Timeout: "garbage"}
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
}
