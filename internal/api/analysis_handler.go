package api

import (
	"log/slog"
	"net/http"

	"github.com/dreamtracer/dreamtracer-api/internal/api/shared"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
)

// AnalysisHandler serves dream analysis, patterns, the dream network and
// daily insights.
type AnalysisHandler struct {
	analysis service.AnalysisService
	insights service.InsightService
	logger   *slog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(
	analysis service.AnalysisService,
	insights service.InsightService,
	logger *slog.Logger,
) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		analysis: analysis,
		insights: insights,
		logger:   logger.With("component", "analysis_handler"),
	}
}

// RequestAnalysis handles POST /api/dreams/{id}/analyze. The analysis runs
// in the background; progress is polled through the task endpoint.
func (h *AnalysisHandler) RequestAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, dreamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	taskID, err := h.analysis.RequestAnalysis(r.Context(), userID, dreamID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start analysis")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, AnalyzeResponse{
		Message: "꿈 분석이 시작되었습니다",
		TaskID:  taskID,
		DreamID: dreamID,
		Status:  string(domain.AnalysisStatusProcessing),
	})
}

// AnalyzeNow handles POST /api/dreams/{id}/modern-analyze.
func (h *AnalysisHandler) AnalyzeNow(w http.ResponseWriter, r *http.Request) {
	userID, dreamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.analysis.AnalyzeNow(r.Context(), userID, dreamID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to analyze dream")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetAnalysis handles GET /api/dreams/{id}/analysis.
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, dreamID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.analysis.GetAnalysis(r.Context(), userID, dreamID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load analysis")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetTaskStatus handles GET /api/analysis/tasks/{taskID}.
func (h *AnalysisHandler) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	status, err := h.analysis.GetTaskStatus(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task status")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// Patterns handles GET /api/analysis/patterns?days=N.
func (h *AnalysisHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	days, err := queryInt(r, "days", service.DefaultPatternDays)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summary, err := h.analysis.Patterns(r.Context(), userID, days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to analyze patterns")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// Network handles GET /api/analysis/network.
func (h *AnalysisHandler) Network(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	network, err := h.analysis.Network(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build dream network")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, network)
}

// DailyInsight handles GET /api/insights/daily.
func (h *AnalysisHandler) DailyInsight(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	insight, err := h.insights.DailyInsight(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate daily insight")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, insight)
}
