package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Dashboard
	mux.HandleFunc("/api/portfolio", s.handlePortfolioOverview)
	mux.HandleFunc("/api/portfolio/", s.routePortfolio)

	// Market data
	mux.HandleFunc("/api/quote", s.handleQuote)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/search", s.handleSearch)

	// Admin
	mux.HandleFunc("/api/admin/login", s.handleAdminLogin)
	mux.HandleFunc("/api/admin/logout", s.handleAdminLogout)
	mux.HandleFunc("/api/admin/session", s.handleAdminSession)
	mux.HandleFunc("/api/admin/investors", s.handleInvestorCreate)
	mux.HandleFunc("/api/admin/investors/", s.routeAdminInvestors)
}

// routePortfolio dispatches /api/portfolio/{slug}/chart.png.
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolio/")
	if slug, ok := strings.CutSuffix(path, "/chart.png"); ok && slug != "" && !strings.Contains(slug, "/") {
		s.handleInvestorChart(w, r, slug)
		return
	}
	WriteError(w, http.StatusNotFound, "Not found")
}

// routeAdminInvestors dispatches /api/admin/investors/{slug} and the
// nested allocation paths.
func (s *Server) routeAdminInvestors(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/admin/investors/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleInvestorBySlug(w, r, parts[0])
	case len(parts) == 2 && parts[0] != "" && parts[1] == "allocations":
		s.handleAllocations(w, r, parts[0])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}
