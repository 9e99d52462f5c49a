// Package app wires configuration, storage, clients and services into
// a runnable application core.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/foliolab/folio/internal/clients/finnhub"
	"github.com/foliolab/folio/internal/clients/yahoo"
	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/services/history"
	"github.com/foliolab/folio/internal/services/market"
	"github.com/foliolab/folio/internal/services/portfolio"
	storage "github.com/foliolab/folio/internal/storage/surrealdb"
)

// App holds all initialized services and clients. It is the shared
// core used by cmd/folio-server and by tests.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	YahooClient      interfaces.YahooClient
	FinnhubClient    interfaces.FinnhubClient
	HistoryResolver  interfaces.HistoryResolver
	MarketService    interfaces.MarketService
	PortfolioService interfaces.PortfolioService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath checks the provided path, FOLIO_CONFIG, the binary
// directory, then the development fallback.
func resolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml"
		}
	}
	return configPath
}

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case the default resolution logic
// is used.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()
	if err := ensureAuthSecrets(ctx, config, storageManager.SystemStore(), logger); err != nil {
		return nil, fmt.Errorf("failed to initialize auth secrets: %w", err)
	}

	return newAppWithStorage(config, logger, storageManager), nil
}

// newAppWithStorage builds the client and service graph on top of an
// existing storage manager. Split out so tests can inject fakes.
func newAppWithStorage(config *common.Config, logger *common.Logger, storageManager interfaces.StorageManager) *App {
	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	// The keyed provider is optional: without a key the history
	// resolver and market service degrade to the free provider alone.
	var finnhubClient interfaces.FinnhubClient
	if config.Clients.Finnhub.APIKey != "" {
		finnhubClient = finnhub.NewClient(
			config.Clients.Finnhub.APIKey,
			finnhub.WithBaseURL(config.Clients.Finnhub.BaseURL),
			finnhub.WithLogger(logger),
			finnhub.WithRateLimit(config.Clients.Finnhub.RateLimit),
			finnhub.WithTimeout(config.Clients.Finnhub.GetTimeout()),
		)
	} else {
		logger.Warn().Msg("Finnhub API key not configured - quotes, search and history fallback will be unavailable")
	}

	historyResolver := history.NewResolver(yahooClient, finnhubClient, logger)
	marketService := market.NewService(finnhubClient, logger)
	portfolioService := portfolio.NewService(storageManager, historyResolver, marketService, logger)

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		YahooClient:      yahooClient,
		FinnhubClient:    finnhubClient,
		HistoryResolver:  historyResolver,
		MarketService:    marketService,
		PortfolioService: portfolioService,
		StartupTime:      time.Now(),
	}
}

const (
	tokenSecretKey       = "token_secret"
	adminPasswordHashKey = "admin_password_hash"
)

// ensureAuthSecrets fills in the token secret and admin credential,
// persisting generated values so they survive restarts. A generated
// admin password is logged exactly once, at generation time.
func ensureAuthSecrets(ctx context.Context, config *common.Config, store interfaces.SystemStore, logger *common.Logger) error {
	if config.Auth.TokenSecret == "" {
		if stored, err := store.GetKV(ctx, tokenSecretKey); err == nil && stored != "" {
			config.Auth.TokenSecret = stored
		} else {
			secret, err := randomHex(32)
			if err != nil {
				return err
			}
			if err := store.SetKV(ctx, tokenSecretKey, secret); err != nil {
				return err
			}
			config.Auth.TokenSecret = secret
		}
	}

	if config.Auth.AdminPassword != "" || config.Auth.AdminPasswordHash != "" {
		return nil
	}

	if stored, err := store.GetKV(ctx, adminPasswordHashKey); err == nil && stored != "" {
		config.Auth.AdminPasswordHash = stored
		return nil
	}

	password, err := randomHex(8)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := store.SetKV(ctx, adminPasswordHashKey, string(hash)); err != nil {
		return err
	}
	config.Auth.AdminPasswordHash = string(hash)

	logger.Warn().
		Str("password", password).
		Msg("Generated admin password - set FOLIO_ADMIN_PASSWORD to override")
	return nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Close shuts down storage connections.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
