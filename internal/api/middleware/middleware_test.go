package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/api/shared"
	"github.com/dreamtracer/dreamtracer-api/internal/mocks"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/service/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(t *testing.T, wantUser uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantUser != uuid.Nil {
			got, ok := GetUserID(r)
			require.True(t, ok)
			assert.Equal(t, wantUser, got)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name     string
		header   string
		jwt      *mocks.MockJWTService
		wantCode int
	}{
		{name: "missing header", header: "", jwt: &mocks.MockJWTService{}, wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", jwt: &mocks.MockJWTService{}, wantCode: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", jwt: &mocks.MockJWTService{}, wantCode: http.StatusUnauthorized},
		{
			name:     "expired token",
			header:   "Bearer expired",
			jwt:      &mocks.MockJWTService{ValidateErr: auth.ErrExpiredToken},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "refresh token used as access token",
			header:   "Bearer refresh",
			jwt:      &mocks.MockJWTService{ValidateErr: fmt.Errorf("check: %w", auth.ErrWrongTokenType)},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unexpected validation failure",
			header:   "Bearer broken",
			jwt:      &mocks.MockJWTService{ValidateErr: fmt.Errorf("keyring unavailable")},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "valid token",
			header:   "bearer good",
			jwt:      &mocks.MockJWTService{Claims: &auth.Claims{UserID: userID, TokenType: auth.TokenTypeAccess}},
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dreams", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			NewAuthMiddleware(tt.jwt).Authenticate(okHandler(t, userID)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	var traceID string
	var hasLogger bool
	handler := NewTraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		hasLogger = logger.FromContextOrDefault(r.Context(), nil) != nil
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Len(t, traceID, 32)
	assert.Equal(t, traceID, rec.Header().Get(shared.TraceIDHeader))
	assert.True(t, hasLogger)
}

type countingObserver struct {
	mu     sync.Mutex
	routes []string
}

func (o *countingObserver) RateLimited(route string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
}

func TestRateLimiter(t *testing.T) {
	observer := &countingObserver{}
	limiter := NewRateLimiter(RateLimitConfig{PerMinute: 1, Burst: 2}, observer)

	r := chi.NewRouter()
	r.With(limiter.Middleware).Post("/api/dreams/{id}/analyze", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	send := func(userID uuid.UUID) int {
		req := httptest.NewRequest(http.MethodPost, "/api/dreams/"+uuid.NewString()+"/analyze", nil)
		req = req.WithContext(shared.WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	alice, bob := uuid.New(), uuid.New()
	assert.Equal(t, http.StatusAccepted, send(alice))
	assert.Equal(t, http.StatusAccepted, send(alice))
	assert.Equal(t, http.StatusTooManyRequests, send(alice))
	assert.Equal(t, http.StatusAccepted, send(bob), "limits are per user")

	assert.Equal(t, []string{"/api/dreams/{id}/analyze"}, observer.routes)
}

func TestRateLimiter_EvictsIdleEntries(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{PerMinute: 60, Burst: 1, EntryTTL: time.Minute}, nil)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("user:a"))
	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.Allow("user:b"))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.entries, "user:a")
}

type recordingHTTPObserver struct {
	method, route string
	code          int
}

func (o *recordingHTTPObserver) ObserveHTTP(method, route string, code int, _ time.Duration) {
	o.method, o.route, o.code = method, route, code
}

func TestMetricsMiddleware(t *testing.T) {
	observer := &recordingHTTPObserver{}
	r := chi.NewRouter()
	r.Use(Metrics(observer))
	r.Get("/api/dreams/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/dreams/"+uuid.NewString(), nil).WithContext(context.Background())
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, http.MethodGet, observer.method)
	assert.Equal(t, "/api/dreams/{id}", observer.route)
	assert.Equal(t, http.StatusNotFound, observer.code)
}
