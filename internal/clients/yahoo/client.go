// Package yahoo provides a client for the Yahoo Finance chart API.
// The chart endpoint is free and requires no API key, which makes it
// the primary history provider.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the YahooClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo chart client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// chartResponse mirrors the v8 chart payload. Close values are pointers
// because the API emits null for missing sessions.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetDailyHistory returns a one-year ascending daily close series for
// the symbol, preferring adjusted close over raw close and skipping
// null sessions.
func (c *Client) GetDailyHistory(ctx context.Context, symbol string) (*models.SymbolHistory, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("range", "1y")
	params.Set("interval", "1d")

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// The chart API rejects requests with a default Go user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; folio/"+common.GetVersion()+")")

	c.logger.Debug().Str("symbol", symbol).Msg("Yahoo chart request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &models.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   "/v8/finance/chart",
		}
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if chart.Chart.Error != nil {
		return nil, &models.ProviderError{
			StatusCode: http.StatusNotFound,
			Message:    chart.Chart.Error.Description,
			Endpoint:   "/v8/finance/chart",
		}
	}

	if len(chart.Chart.Result) == 0 {
		return &models.SymbolHistory{Symbol: symbol}, nil
	}

	result := chart.Chart.Result[0]

	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	history := &models.SymbolHistory{
		Symbol: symbol,
		Points: make([]models.PricePoint, 0, len(result.Timestamp)),
	}
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		history.Points = append(history.Points, models.PricePoint{
			Time:  ts,
			Close: *closes[i],
		})
	}

	return history, nil
}

// Ensure Client implements YahooClient
var _ interfaces.YahooClient = (*Client)(nil)
