package api

import (
	"log/slog"
	"net/http"

	"github.com/dreamtracer/dreamtracer-api/internal/api/shared"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
)

// SubscriptionHandler serves plans, upgrades and usage.
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
	logger        *slog.Logger
}

// NewSubscriptionHandler creates a SubscriptionHandler.
func NewSubscriptionHandler(subscriptions service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        logger.With("component", "subscription_handler"),
	}
}

// Plans handles GET /api/subscription/plans. It needs no authentication.
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.subscriptions.Plans())
}

// Status handles GET /api/subscription/status.
func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	status, err := h.subscriptions.Status(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load subscription")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// Upgrade handles POST /api/subscription/upgrade.
func (h *SubscriptionHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req UpgradeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.subscriptions.Upgrade(r.Context(), userID, domain.PlanID(req.PlanID), req.PaymentMethod)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to upgrade subscription")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Cancel handles POST /api/subscription/cancel.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	result, err := h.subscriptions.Cancel(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to cancel subscription")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Usage handles GET /api/subscription/usage.
func (h *SubscriptionHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	check, err := h.subscriptions.CheckUsage(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check usage")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, check)
}
