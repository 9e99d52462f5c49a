package server

import (
	"net/http"

	"github.com/foliolab/folio/internal/interfaces"
)

// --- Investor handlers ---

func (s *Server) handleInvestorCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	investor, err := s.app.PortfolioService.CreateInvestor(r.Context(), req.Name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, investor)
}

func (s *Server) handleInvestorBySlug(w http.ResponseWriter, r *http.Request, slug string) {
	switch r.Method {
	case http.MethodPatch:
		var req struct {
			Name string `json:"name"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		investor, err := s.app.PortfolioService.RenameInvestor(r.Context(), slug, req.Name)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, investor)

	case http.MethodDelete:
		if err := s.app.PortfolioService.DeleteInvestor(r.Context(), slug); err != nil {
			WriteServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		RequireMethod(w, r, http.MethodPatch, http.MethodDelete)
	}
}

// --- Allocation handlers ---

// handleAllocations serves the allocation collection of one investor.
// Edits and deletes identify the allocation by the id field in the
// request body.
func (s *Server) handleAllocations(w http.ResponseWriter, r *http.Request, slug string) {
	switch r.Method {
	case http.MethodPost:
		var req interfaces.AllocationInput
		if !DecodeJSON(w, r, &req) {
			return
		}
		alloc, err := s.app.PortfolioService.AddAllocation(r.Context(), slug, req)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, alloc)

	case http.MethodPatch:
		var req interfaces.AllocationInput
		if !DecodeJSON(w, r, &req) {
			return
		}
		if req.ID == "" {
			WriteError(w, http.StatusBadRequest, "Allocation id is required")
			return
		}
		alloc, err := s.app.PortfolioService.UpdateAllocation(r.Context(), slug, req)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, alloc)

	case http.MethodDelete:
		var req struct {
			ID string `json:"id"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if req.ID == "" {
			WriteError(w, http.StatusBadRequest, "Allocation id is required")
			return
		}
		if err := s.app.PortfolioService.DeleteAllocation(r.Context(), slug, req.ID); err != nil {
			WriteServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		RequireMethod(w, r, http.MethodPost, http.MethodPatch, http.MethodDelete)
	}
}
