package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cranelabs/landing-api/pkg/logging"
)

// AdminHandler serves the authenticated lead follow-up API.
type AdminHandler struct {
	repo   Repository
	logger *logging.Logger
}

// NewAdminHandler creates the admin leads handler.
func NewAdminHandler(repo Repository, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{repo: repo, logger: logger}
}

// ListResponse is the response for listing leads
type ListResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// List handles GET /admin/leads requests
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Limit:  50,
		Offset: 0,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	if status := r.URL.Query().Get("status"); status != "" {
		if !ValidStatus(status) {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
		filter.Status = status
	}

	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	response := ListResponse{
		Leads:  leads,
		Count:  len(leads),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Get handles GET /admin/leads/{id} requests
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing lead id", http.StatusBadRequest)
		return
	}

	lead, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get lead", "error", err, "id", id)
		http.Error(w, "failed to get lead", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lead)
}

// UpdateStatusRequest is the body for PATCH /admin/leads/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /admin/leads/{id}/status requests
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing lead id", http.StatusBadRequest)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			http.Error(w, "unknown status", http.StatusBadRequest)
		case errors.Is(err, ErrLeadNotFound):
			http.Error(w, "lead not found", http.StatusNotFound)
		default:
			h.logger.Error("failed to update lead status", "error", err, "id", id)
			http.Error(w, "failed to update lead", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("lead status updated", "id", id, "status", req.Status)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": req.Status})
}
