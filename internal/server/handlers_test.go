package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/app"
	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/interfaces"
	"github.com/foliolab/folio/internal/models"
)

// --- Fakes ---

type fakeMarket struct {
	quote   *models.Quote
	err     error
	results []models.SearchResult
}

func (f *fakeMarket) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func (f *fakeMarket) GetProfile(ctx context.Context, symbol string) (*models.Profile, error) {
	return nil, models.ErrNoData
}

func (f *fakeMarket) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeHistory struct {
	history *models.SymbolHistory
	err     error
}

func (f *fakeHistory) Resolve(ctx context.Context, symbol string) (*models.SymbolHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

type fakePortfolio struct {
	overview  *models.PortfolioOverview
	chart     []byte
	investor  *models.Investor
	alloc     *models.Allocation
	err       error
	mutations int
}

func (f *fakePortfolio) Overview(ctx context.Context) (*models.PortfolioOverview, error) {
	return f.overview, f.err
}

func (f *fakePortfolio) InvestorChart(ctx context.Context, slug string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chart, nil
}

func (f *fakePortfolio) CreateInvestor(ctx context.Context, name string) (*models.Investor, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mutations++
	return f.investor, nil
}

func (f *fakePortfolio) RenameInvestor(ctx context.Context, slug, newName string) (*models.Investor, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mutations++
	return f.investor, nil
}

func (f *fakePortfolio) DeleteInvestor(ctx context.Context, slug string) error {
	if f.err != nil {
		return f.err
	}
	f.mutations++
	return nil
}

func (f *fakePortfolio) AddAllocation(ctx context.Context, slug string, input interfaces.AllocationInput) (*models.Allocation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mutations++
	return f.alloc, nil
}

func (f *fakePortfolio) UpdateAllocation(ctx context.Context, slug string, input interfaces.AllocationInput) (*models.Allocation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mutations++
	return f.alloc, nil
}

func (f *fakePortfolio) DeleteAllocation(ctx context.Context, slug, allocationID string) error {
	if f.err != nil {
		return f.err
	}
	f.mutations++
	return nil
}

// testServer builds a server around fakes. The returned handler carries
// the full middleware stack.
func testServer(portfolio *fakePortfolio, market *fakeMarket, history *fakeHistory) *Server {
	config := common.NewDefaultConfig()
	config.Auth.AdminPassword = "hunter2"
	config.Auth.TokenSecret = "test-token-secret"

	if portfolio == nil {
		portfolio = &fakePortfolio{}
	}
	if market == nil {
		market = &fakeMarket{}
	}
	if history == nil {
		history = &fakeHistory{}
	}

	a := &app.App{
		Config:           config,
		Logger:           common.NewSilentLogger(),
		MarketService:    market,
		HistoryResolver:  history,
		PortfolioService: portfolio,
	}
	return NewServer(a)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// adminLogin authenticates and returns the session cookie.
func adminLogin(t *testing.T, s *Server) *http.Cookie {
	t.Helper()

	rec := doRequest(t, s, http.MethodPost, "/api/admin/login", map[string]string{"password": "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == adminCookieName {
			return c
		}
	}
	t.Fatal("admin cookie not set")
	return nil
}

// --- System ---

func TestHealthEndpoint(t *testing.T) {
	s := testServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestMethodNotAllowed(t *testing.T) {
	s := testServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))
}

// --- Market data ---

func TestQuoteEndpoint(t *testing.T) {
	market := &fakeMarket{quote: &models.Quote{Symbol: "AAPL", Price: 150, PrevClose: 148, Timestamp: time.Now()}}
	s := testServer(nil, market, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/quote?symbol=aapl", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var quote models.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 150.0, quote.Price)
}

func TestQuoteMissingSymbol(t *testing.T) {
	s := testServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/quote", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteUnknownSymbol(t *testing.T) {
	s := testServer(nil, &fakeMarket{err: models.ErrNoData}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/quote?symbol=ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuoteProviderFailure(t *testing.T) {
	s := testServer(nil, &fakeMarket{err: &models.ProviderError{StatusCode: 500, Endpoint: "/quote"}}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/quote?symbol=AAPL", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	history := &fakeHistory{history: &models.SymbolHistory{
		Symbol: "AAPL",
		Points: []models.PricePoint{{Time: 1735776000, Close: 130}},
	}}
	s := testServer(nil, nil, history)

	rec := doRequest(t, s, http.MethodGet, "/api/history?symbol=AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"symbol":"AAPL"`)
	assert.Contains(t, rec.Body.String(), `"history":[`)
}

func TestHistoryRateLimited(t *testing.T) {
	history := &fakeHistory{err: &models.HistoryUnavailableError{Symbol: "AAPL", RateLimited: true}}
	s := testServer(nil, nil, history)

	rec := doRequest(t, s, http.MethodGet, "/api/history?symbol=AAPL", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHistoryNotFound(t *testing.T) {
	history := &fakeHistory{err: &models.HistoryUnavailableError{Symbol: "ZZZZ"}}
	s := testServer(nil, nil, history)

	rec := doRequest(t, s, http.MethodGet, "/api/history?symbol=ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchMissingQuery(t *testing.T) {
	s := testServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	market := &fakeMarket{results: []models.SearchResult{{Symbol: "AAPL", Description: "APPLE INC"}}}
	s := testServer(nil, market, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/search?q=apple", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AAPL")
}

// --- Dashboard ---

func TestPortfolioOverviewEndpoint(t *testing.T) {
	portfolio := &fakePortfolio{overview: &models.PortfolioOverview{
		AsOf:    time.Now().UnixMilli(),
		Symbols: []string{"AAPL"},
	}}
	s := testServer(portfolio, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/portfolio", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AAPL")
}

func TestInvestorChartEndpoint(t *testing.T) {
	portfolio := &fakePortfolio{chart: []byte{0x89, 'P', 'N', 'G'}}
	s := testServer(portfolio, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/portfolio/ada-lovelace/chart.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestInvestorChartUnknownSlug(t *testing.T) {
	portfolio := &fakePortfolio{err: models.ErrInvestorNotFound}
	s := testServer(portfolio, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/portfolio/nobody/chart.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioUnknownSubpath(t *testing.T) {
	s := testServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/portfolio/ada-lovelace/other", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Admin ---

func TestAdminGateRejectsAnonymous(t *testing.T) {
	portfolio := &fakePortfolio{}
	s := testServer(portfolio, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/admin/investors", map[string]string{"name": "Ada"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, portfolio.mutations)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	s := testServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/admin/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestAdminLoginAndCreateInvestor(t *testing.T) {
	portfolio := &fakePortfolio{investor: &models.Investor{Name: "Ada Lovelace"}}
	s := testServer(portfolio, nil, nil)

	cookie := adminLogin(t, s)

	rec := doRequest(t, s, http.MethodPost, "/api/admin/investors", map[string]string{"name": "Ada Lovelace"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, portfolio.mutations)
}

func TestAdminRenameInvestor(t *testing.T) {
	portfolio := &fakePortfolio{investor: &models.Investor{Name: "Ada King"}}
	s := testServer(portfolio, nil, nil)

	cookie := adminLogin(t, s)

	rec := doRequest(t, s, http.MethodPatch, "/api/admin/investors/ada-lovelace", map[string]string{"name": "Ada King"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada King")
	assert.Equal(t, 1, portfolio.mutations)
}

func TestAdminDuplicateInvestorConflict(t *testing.T) {
	portfolio := &fakePortfolio{err: models.ErrDuplicateInvestor}
	s := testServer(portfolio, nil, nil)

	cookie := adminLogin(t, s)

	rec := doRequest(t, s, http.MethodPost, "/api/admin/investors", map[string]string{"name": "Ada"}, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminVersionConflict(t *testing.T) {
	portfolio := &fakePortfolio{err: models.ErrVersionConflict}
	s := testServer(portfolio, nil, nil)

	cookie := adminLogin(t, s)

	rec := doRequest(t, s, http.MethodDelete, "/api/admin/investors/ada-lovelace", nil, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminAllocationRoutes(t *testing.T) {
	portfolio := &fakePortfolio{alloc: &models.Allocation{ID: "a1", Symbol: "AAPL"}}
	s := testServer(portfolio, nil, nil)

	cookie := adminLogin(t, s)

	input := map[string]interface{}{
		"symbol":          "AAPL",
		"amount_invested": 1000,
		"date_invested":   "2025-01-02",
	}

	rec := doRequest(t, s, http.MethodPost, "/api/admin/investors/ada-lovelace/allocations", input, cookie)
	assert.Equal(t, http.StatusCreated, rec.Code)

	input["id"] = "a1"
	rec = doRequest(t, s, http.MethodPatch, "/api/admin/investors/ada-lovelace/allocations", input, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/admin/investors/ada-lovelace/allocations", map[string]string{"id": "a1"}, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 3, portfolio.mutations)
}

func TestAdminAllocationEditRequiresID(t *testing.T) {
	portfolio := &fakePortfolio{alloc: &models.Allocation{ID: "a1", Symbol: "AAPL"}}
	s := testServer(portfolio, nil, nil)

	cookie := adminLogin(t, s)

	rec := doRequest(t, s, http.MethodPatch, "/api/admin/investors/ada-lovelace/allocations", map[string]string{"symbol": "AAPL"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/admin/investors/ada-lovelace/allocations", map[string]string{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 0, portfolio.mutations)
}

func TestAdminSessionProbe(t *testing.T) {
	s := testServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/admin/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	cookie := adminLogin(t, s)
	rec = doRequest(t, s, http.MethodGet, "/api/admin/session", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
}

func TestAdminLogoutClearsCookie(t *testing.T) {
	s := testServer(nil, nil, nil)
	cookie := adminLogin(t, s)

	rec := doRequest(t, s, http.MethodPost, "/api/admin/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == adminCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}
