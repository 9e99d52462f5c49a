package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/foliolab/folio/internal/common"
	"github.com/foliolab/folio/internal/models"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// --- Dashboard handlers ---

func (s *Server) handlePortfolioOverview(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	overview, err := s.app.PortfolioService.Overview(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, overview)
}

func (s *Server) handleInvestorChart(w http.ResponseWriter, r *http.Request, slug string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.PortfolioService.InvestorChart(r.Context(), slug)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// --- Market data handlers ---

// symbolParam reads and normalizes the symbol query parameter.
func symbolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := models.NormalizeSymbol(r.URL.Query().Get("symbol"))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol query parameter is required")
		return "", false
	}
	return symbol, true
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}

	quote, err := s.app.MarketService.GetQuote(r.Context(), symbol)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, quote)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}

	history, err := s.app.HistoryResolver.Resolve(r.Context(), symbol)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	resp := struct {
		Symbol  string              `json:"symbol"`
		History []models.PricePoint `json:"history"`
	}{
		Symbol:  history.Symbol,
		History: history.Points,
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	results, err := s.app.MarketService.Search(r.Context(), query)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}
