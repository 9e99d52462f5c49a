// Package finnhub provides a client for the Finnhub API
package finnhub

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
	DefaultBaseURL   = "https://finnhub.io/api/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the FinnhubClient interface
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a new Finnhub client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Finnhub API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &models.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// quoteResponse is the raw /quote payload.
type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// GetQuote retrieves the current quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp quoteResponse
	if err := c.get(ctx, "/quote", params, &resp); err != nil {
		return nil, err
	}

	quote := &models.Quote{
		Symbol:        symbol,
		Price:         resp.Current,
		Change:        resp.Change,
		ChangePercent: resp.ChangePercent,
		High:          resp.High,
		Low:           resp.Low,
		Open:          resp.Open,
		PrevClose:     resp.PrevClose,
	}
	if resp.Timestamp > 0 {
		quote.Timestamp = time.Unix(resp.Timestamp, 0).UTC()
	}

	return quote, nil
}

// candleResponse is the raw /stock/candle payload (parallel arrays).
type candleResponse struct {
	Status string    `json:"s"` // "ok" or "no_data"
	Close  []float64 `json:"c"`
	Time   []int64   `json:"t"`
}

// GetCandles retrieves daily candles between from and to, ascending.
func (c *Client) GetCandles(ctx context.Context, symbol string, from, to time.Time) (*models.SymbolHistory, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", "D")
	params.Set("from", fmt.Sprintf("%d", from.Unix()))
	params.Set("to", fmt.Sprintf("%d", to.Unix()))

	var resp candleResponse
	if err := c.get(ctx, "/stock/candle", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "ok" || len(resp.Time) == 0 {
		return &models.SymbolHistory{Symbol: symbol}, nil
	}

	n := len(resp.Time)
	if len(resp.Close) < n {
		n = len(resp.Close)
	}

	history := &models.SymbolHistory{
		Symbol: symbol,
		Points: make([]models.PricePoint, 0, n),
	}
	for i := 0; i < n; i++ {
		history.Points = append(history.Points, models.PricePoint{
			Time:  resp.Time[i],
			Close: resp.Close[i],
		})
	}

	return history, nil
}

// profileResponse is the raw /stock/profile2 payload.
type profileResponse struct {
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"`
	Exchange  string  `json:"exchange"`
	Currency  string  `json:"currency"`
	Industry  string  `json:"finnhubIndustry"`
	WebURL    string  `json:"weburl"`
	Logo      string  `json:"logo"`
	MarketCap float64 `json:"marketCapitalization"`
}

// GetProfile retrieves company profile data for a symbol.
func (c *Client) GetProfile(ctx context.Context, symbol string) (*models.Profile, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp profileResponse
	if err := c.get(ctx, "/stock/profile2", params, &resp); err != nil {
		return nil, err
	}

	return &models.Profile{
		Symbol:    symbol,
		Name:      resp.Name,
		Ticker:    resp.Ticker,
		Exchange:  resp.Exchange,
		Currency:  resp.Currency,
		Industry:  resp.Industry,
		WebURL:    resp.WebURL,
		Logo:      resp.Logo,
		MarketCap: resp.MarketCap,
	}, nil
}

// searchResponse is the raw /search payload.
type searchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Symbol        string `json:"symbol"`
		DisplaySymbol string `json:"displaySymbol"`
		Description   string `json:"description"`
		Type          string `json:"type"`
	} `json:"result"`
}

// Search queries instruments by free text, preserving provider order.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, models.SearchResult{
			Symbol:      r.Symbol,
			Description: r.Description,
			Type:        r.Type,
		})
	}

	return results, nil
}

// Ensure Client implements FinnhubClient
var _ interfaces.FinnhubClient = (*Client)(nil)
