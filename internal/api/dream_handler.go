package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dreamtracer/dreamtracer-api/internal/api/shared"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
)

// DreamHandler serves the dream journal endpoints.
type DreamHandler struct {
	dreams service.DreamService
	logger *slog.Logger
}

// NewDreamHandler creates a DreamHandler.
func NewDreamHandler(dreams service.DreamService, logger *slog.Logger) *DreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DreamHandler{dreams: dreams, logger: logger.With("component", "dream_handler")}
}

// CreateDream handles POST /api/dreams.
func (h *DreamHandler) CreateDream(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateDreamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dream, err := h.dreams.CreateDream(r.Context(), userID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create dream")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, dream)
}

// ListDreams handles GET /api/dreams with optional skip, limit, start_date,
// end_date, dream_type and emotion filters.
func (h *DreamHandler) ListDreams(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter, err := dreamFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	dreams, err := h.dreams.ListDreams(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list dreams")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DreamListResponse{
		Dreams: dreams,
		Skip:   filter.Skip,
		Limit:  filter.Limit,
	})
}

func dreamFilter(r *http.Request) (store.DreamFilter, error) {
	skip, limit, err := pagination(r)
	if err != nil {
		return store.DreamFilter{}, err
	}
	filter := store.DreamFilter{
		Skip:      skip,
		Limit:     limit,
		DreamType: domain.DreamType(r.URL.Query().Get("dream_type")),
		Emotion:   r.URL.Query().Get("emotion"),
	}
	if filter.StartDate, err = queryDate(r, "start_date"); err != nil {
		return store.DreamFilter{}, err
	}
	if filter.EndDate, err = queryDate(r, "end_date"); err != nil {
		return store.DreamFilter{}, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return store.DreamFilter{}, fmt.Errorf("%w: end_date is before start_date", domain.ErrValidation)
	}
	return filter, nil
}

// GetDream handles GET /api/dreams/{id}.
func (h *DreamHandler) GetDream(w http.ResponseWriter, r *http.Request) {
	userID, dreamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	dream, err := h.dreams.GetDream(r.Context(), userID, dreamID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load dream")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dream)
}

// UpdateDream handles PUT /api/dreams/{id}.
func (h *DreamHandler) UpdateDream(w http.ResponseWriter, r *http.Request) {
	userID, dreamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateDreamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dream, err := h.dreams.UpdateDream(r.Context(), userID, dreamID, req.toUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update dream")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dream)
}

// DeleteDream handles DELETE /api/dreams/{id}.
func (h *DreamHandler) DeleteDream(w http.ResponseWriter, r *http.Request) {
	userID, dreamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.dreams.DeleteDream(r.Context(), userID, dreamID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete dream")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchDreams handles GET /api/dreams/search?q=...
func (h *DreamHandler) SearchDreams(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Search query is required")
		return
	}
	_, limit, err := pagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	dreams, err := h.dreams.SearchDreams(r.Context(), userID, query, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search dreams")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DreamListResponse{Dreams: dreams, Limit: limit})
}

// Stats handles GET /api/dreams/stats.
func (h *DreamHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := h.dreams.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
