package main

import (
	"net/http"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/api"
	apiMiddleware "github.com/dreamtracer/dreamtracer-api/internal/api/middleware"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// analyzeLimiterTTL is how long an idle user's analysis rate limiter is kept.
const analyzeLimiterTTL = 30 * time.Minute

// setupRouter registers middleware and every API route.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.Metrics(app.metrics))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	dreamHandler := api.NewDreamHandler(app.dreamService, app.logger)
	analysisHandler := api.NewAnalysisHandler(app.analysisService, app.insightService, app.logger)
	communityHandler := api.NewCommunityHandler(app.communityService, app.logger)
	subscriptionHandler := api.NewSubscriptionHandler(app.subscriptionService, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	analyzeLimiter := apiMiddleware.NewRateLimiter(apiMiddleware.RateLimitConfig{
		PerMinute: app.config.Limits.AnalyzePerMinute,
		Burst:     app.config.Limits.AnalyzeBurst,
		EntryTTL:  analyzeLimiterTTL,
	}, app.metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Get("/subscription/plans", subscriptionHandler.Plans)

		r.Get("/community/posts", communityHandler.ListPosts)
		r.Get("/community/posts/{id}", communityHandler.GetPost)
		r.Get("/community/search", communityHandler.SearchPosts)
		r.Get("/community/tags", communityHandler.PopularTags)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", userHandler.GetMe)
			r.Put("/users/me", userHandler.UpdatePreferences)
			r.Delete("/users/me", userHandler.DeleteMe)

			r.Post("/dreams", dreamHandler.CreateDream)
			r.Get("/dreams", dreamHandler.ListDreams)
			r.Get("/dreams/search", dreamHandler.SearchDreams)
			r.Get("/dreams/stats", dreamHandler.Stats)
			r.Get("/dreams/{id}", dreamHandler.GetDream)
			r.Put("/dreams/{id}", dreamHandler.UpdateDream)
			r.Delete("/dreams/{id}", dreamHandler.DeleteDream)
			r.Get("/dreams/{id}/analysis", analysisHandler.GetAnalysis)

			r.With(analyzeLimiter.Middleware).Post("/dreams/{id}/analyze", analysisHandler.RequestAnalysis)
			r.With(analyzeLimiter.Middleware).Post("/dreams/{id}/modern-analyze", analysisHandler.AnalyzeNow)

			r.Get("/analysis/tasks/{taskID}", analysisHandler.GetTaskStatus)
			r.Get("/analysis/patterns", analysisHandler.Patterns)
			r.Get("/analysis/network", analysisHandler.Network)
			r.Get("/insights/daily", analysisHandler.DailyInsight)

			r.Post("/community/posts", communityHandler.CreatePost)
			r.Put("/community/posts/{id}", communityHandler.UpdatePost)
			r.Delete("/community/posts/{id}", communityHandler.DeletePost)

			r.Get("/subscription/status", subscriptionHandler.Status)
			r.Post("/subscription/upgrade", subscriptionHandler.Upgrade)
			r.Post("/subscription/cancel", subscriptionHandler.Cancel)
			r.Get("/subscription/usage", subscriptionHandler.Usage)
		})
	})

	r.Get("/health", app.health)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}

// health reports whether the database is reachable.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		if err := app.db.PingContext(r.Context()); err != nil {
			app.logger.Warn("health check failed", "error", redact.Error(err))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", "error", redact.Error(err))
	}
}
