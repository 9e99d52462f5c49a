// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Auth        AuthConfig    `toml:"auth"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration
type StorageConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds market-data client configurations
type ClientsConfig struct {
	Yahoo   YahooConfig   `toml:"yahoo"`
	Finnhub FinnhubConfig `toml:"finnhub"`
}

// YahooConfig holds the free chart-API provider configuration.
// No API key is required.
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FinnhubConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AuthConfig holds the admin gate configuration. AdminPasswordHash is a
// bcrypt hash; AdminPassword is a plaintext fallback for development.
type AuthConfig struct {
	AdminPassword     string `toml:"admin_password"`
	AdminPasswordHash string `toml:"admin_password_hash"`
	TokenSecret       string `toml:"token_secret"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000",
			Namespace: "folio",
			Database:  "folio",
			Username:  "root",
			Password:  "root",
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Finnhub: FinnhubConfig{
				BaseURL:   "https://finnhub.io/api/v1",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		// Auth secrets have no defaults; unset values are generated
		// and persisted at startup.
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("FOLIO_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if ns := os.Getenv("FOLIO_STORAGE_NAMESPACE"); ns != "" {
		config.Storage.Namespace = ns
	}
	if db := os.Getenv("FOLIO_STORAGE_DATABASE"); db != "" {
		config.Storage.Database = db
	}
	if user := os.Getenv("FOLIO_STORAGE_USERNAME"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("FOLIO_STORAGE_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}

	for _, name := range []string{"FINNHUB_API_KEY", "FOLIO_FINNHUB_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			config.Clients.Finnhub.APIKey = key
			break
		}
	}

	if v := os.Getenv("FOLIO_ADMIN_PASSWORD"); v != "" {
		config.Auth.AdminPassword = v
	}
	if v := os.Getenv("FOLIO_ADMIN_PASSWORD_HASH"); v != "" {
		config.Auth.AdminPasswordHash = v
	}
	if v := os.Getenv("FOLIO_TOKEN_SECRET"); v != "" {
		config.Auth.TokenSecret = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
