package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dreamtracer/dreamtracer-api/internal/analysis"
	"github.com/dreamtracer/dreamtracer-api/internal/config"
	"github.com/dreamtracer/dreamtracer-api/internal/events"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/gemini"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/metrics"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/postgres"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
	"github.com/dreamtracer/dreamtracer-api/internal/service/auth"
	"github.com/dreamtracer/dreamtracer-api/internal/similarity"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/dreamtracer/dreamtracer-api/internal/task"
	"golang.org/x/sync/errgroup"
)

// embeddingCacheSize bounds the number of memoized dream embeddings.
const embeddingCacheSize = 4096

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	userStore      store.UserStore
	dreamStore     store.DreamStore
	analysisStore  store.AnalysisStore
	communityStore store.CommunityStore
	taskStore      task.TaskStore

	jwtService          auth.JWTService
	userService         service.UserService
	dreamService        service.DreamService
	analysisService     service.AnalysisService
	insightService      service.InsightService
	communityService    service.CommunityService
	subscriptionService service.SubscriptionService
	maintenance         *service.MaintenanceService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires stores, services and the task pipeline around an open
// database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.Default(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.dreamStore = postgres.NewPostgresDreamStore(db, logger)
	app.analysisStore = postgres.NewPostgresAnalysisStore(db, logger)
	app.communityStore = postgres.NewPostgresCommunityStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	llm, err := gemini.NewClient(ctx, cfg.LLM, logger.With("component", "gemini"))
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		logger.Warn("gemini is not configured, using heuristic insights and hashed embeddings")
	case err != nil:
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	default:
		logger.Info("gemini client initialized", "model", cfg.LLM.ModelName)
	}

	network, err := newNetworkBuilder(llm, app.metrics, logger)
	if err != nil {
		return nil, err
	}

	system := analysis.NewSystem(
		analysis.WithLogger(logger.With("component", "analysis_system")),
		analysis.WithRecorder(app.metrics),
		analysis.WithConcurrency(cfg.Analysis.Concurrent),
	)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.subscriptionService = service.NewSubscriptionService(app.userStore, app.dreamStore, cfg.Subscription, logger)
	app.userService = service.NewUserService(app.userStore, auth.NewBcryptHasher(cfg.Auth.BCryptCost), db, logger)
	app.dreamService = service.NewDreamService(app.dreamStore, logger)
	app.communityService = service.NewCommunityService(app.communityStore, app.dreamStore, logger)
	app.maintenance = service.NewMaintenanceService(app.analysisStore, cfg.Analysis, logger)

	var oracle service.InsightOracle
	if llm != nil {
		oracle = llm
	}
	app.insightService = service.NewInsightService(app.dreamStore, app.userStore, oracle, system, cfg.Analysis, logger)

	app.analysisService, err = service.NewAnalysisService(service.AnalysisServiceDeps{
		DB:         db,
		Dreams:     app.dreamStore,
		Analyses:   app.analysisStore,
		Users:      app.userStore,
		Tasks:      app.taskStore,
		Emitter:    app.eventEmitter,
		Usage:      app.subscriptionService,
		System:     system,
		Similarity: network,
	}, cfg.Analysis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis service: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: cfg.Task.StuckTaskAge(),
	}, logger)
	app.taskRunner.SetRecorder(app.metrics)

	factory := task.NewDreamAnalysisTaskFactory(app.analysisService, logger)
	app.taskRunner.RegisterRebuilder(task.TaskTypeDreamAnalysis, factory)
	app.eventEmitter.RegisterHandlerFor(task.TaskTypeDreamAnalysis,
		task.NewTaskFactoryEventHandler(factory, app.taskRunner, logger))

	logger.Info("application initialized")
	return app, nil
}

// newNetworkBuilder embeds dreams with Gemini when available and with the
// local hashing embedder otherwise. Both go through the LRU cache.
func newNetworkBuilder(llm *gemini.Client, m *metrics.Metrics, logger *slog.Logger) (*similarity.NetworkBuilder, error) {
	var base similarity.Embedder = similarity.HashingEmbedder{}
	if llm != nil {
		base = llm
	}
	cached, err := similarity.NewCachedEmbedder(base, embeddingCacheSize, m)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return similarity.NewNetworkBuilder(cached, logger), nil
}

// Run starts the task runner, the maintenance loop and the HTTP server, and
// blocks until ctx is cancelled or one of them fails.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.maintenance.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return app.startHTTPServer(gctx, app.setupRouter())
	})
	return g.Wait()
}

// cleanup stops background work and closes the database.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", redact.Error(err))
		}
	}
	app.logger.Info("application shutdown completed")
}
