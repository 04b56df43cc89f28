package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dreamtracer/dreamtracer-api/internal/config"
	"github.com/dreamtracer/dreamtracer-api/internal/mocks"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/metrics"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
	"github.com/dreamtracer/dreamtracer-api/internal/service/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalysis struct {
	service.AnalysisService
	calls int
}

func (s *stubAnalysis) RequestAnalysis(context.Context, uuid.UUID, uuid.UUID) (uuid.UUID, error) {
	s.calls++
	return uuid.New(), nil
}

func newTestApp(t *testing.T, jwt auth.JWTService) (*application, *stubAnalysis) {
	t.Helper()
	reg := prometheus.NewRegistry()
	analysis := &stubAnalysis{}
	return &application{
		config: &config.Config{
			Limits: config.LimitsConfig{AnalyzePerMinute: 1, AnalyzeBurst: 1},
		},
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:         metrics.MustNew(reg, reg),
		jwtService:      jwt,
		analysisService: analysis,
	}, analysis
}

func TestRouter_RegistersEveryRoute(t *testing.T) {
	app, _ := newTestApp(t, &mocks.MockJWTService{})
	routes, ok := app.setupRouter().(chi.Routes)
	require.True(t, ok)

	registered := map[string]bool{}
	require.NoError(t, chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	}))

	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"GET /api/users/me",
		"PUT /api/users/me",
		"DELETE /api/users/me",
		"POST /api/dreams",
		"GET /api/dreams",
		"GET /api/dreams/search",
		"GET /api/dreams/stats",
		"GET /api/dreams/{id}",
		"PUT /api/dreams/{id}",
		"DELETE /api/dreams/{id}",
		"POST /api/dreams/{id}/analyze",
		"POST /api/dreams/{id}/modern-analyze",
		"GET /api/dreams/{id}/analysis",
		"GET /api/analysis/tasks/{taskID}",
		"GET /api/analysis/patterns",
		"GET /api/analysis/network",
		"GET /api/insights/daily",
		"GET /api/community/posts",
		"POST /api/community/posts",
		"GET /api/community/posts/{id}",
		"PUT /api/community/posts/{id}",
		"DELETE /api/community/posts/{id}",
		"GET /api/community/search",
		"GET /api/community/tags",
		"GET /api/subscription/plans",
		"GET /api/subscription/status",
		"POST /api/subscription/upgrade",
		"POST /api/subscription/cancel",
		"GET /api/subscription/usage",
		"GET /health",
		"GET /metrics",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	app, _ := newTestApp(t, &mocks.MockJWTService{})
	router := app.setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "dreamtracer_http_request_duration_seconds_count")
	assert.Contains(t, body, `route="/health"`)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t, &mocks.MockJWTService{ValidateErr: auth.ErrInvalidToken})
	router := app.setupRouter()

	for _, target := range []string{"/api/dreams", "/api/users/me", "/api/analysis/patterns", "/api/subscription/usage"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dreams", nil)
	req.Header.Set("Authorization", "Bearer forged")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AnalyzeIsRateLimited(t *testing.T) {
	userID := uuid.New()
	app, analysis := newTestApp(t, &mocks.MockJWTService{Claims: &auth.Claims{UserID: userID, TokenType: auth.TokenTypeAccess}})
	router := app.setupRouter()
	target := "/api/dreams/" + uuid.NewString() + "/analyze"

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(""))
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusAccepted, send().Code)
	limited := send()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Equal(t, 1, analysis.calls)
}
