package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hairizuan-noorazman/steprunner/evidence"
	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// PaginatedResponse is the envelope of list endpoints.
type PaginatedResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// OutcomeHandler serves stored outcomes.
type OutcomeHandler struct {
	store    outcome.Store
	evidence evidence.Store
	logger   logger.Logger
}

// NewOutcomeHandler creates a handler. evidenceStore may be nil, in which case step evidence is
// reported by key only.
func NewOutcomeHandler(store outcome.Store, evidenceStore evidence.Store, log logger.Logger) *OutcomeHandler {
	return &OutcomeHandler{
		store:    store,
		evidence: evidenceStore,
		logger:   log,
	}
}

// List handles GET /api/v1/outcomes?limit=&offset=.
func (h *OutcomeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil || limit < 1 {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	summaries, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list outcomes")
		return
	}
	total, err := h.store.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count outcomes")
		return
	}

	respondJSON(w, http.StatusOK, PaginatedResponse{
		Items:  summaries,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /api/v1/outcomes/{id}.
func (h *OutcomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid outcome ID: must be a valid UUID")
		return
	}

	o, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, outcome.ErrOutcomeNotFound) {
			respondError(w, http.StatusNotFound, "outcome not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get outcome")
		return
	}

	view := newOutcomeView(o)
	if h.evidence != nil {
		walkSteps(view.Steps, func(s *stepView) {
			if s.Evidence == "" {
				return
			}
			url, err := h.evidence.URL(r.Context(), s.Evidence)
			if err != nil {
				h.logger.Warn(r.Context(), "failed to resolve evidence URL", map[string]interface{}{
					"outcome_id": id.String(),
					"key":        s.Evidence,
					"error":      err.Error(),
				})
				return
			}
			s.EvidenceURL = url
		})
	}
	respondJSON(w, http.StatusOK, view)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// newRouter wires the read-only API.
func newRouter(h *OutcomeHandler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/outcomes", h.List).Methods("GET")
	api.HandleFunc("/outcomes/{id}", h.Get).Methods("GET")
	return router
}
