package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/config"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
)

// MaintenanceService runs periodic housekeeping.
type MaintenanceService struct {
	analyses  store.AnalysisStore
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewMaintenanceService creates a MaintenanceService that removes analyses
// older than cfg.RetentionDays every cfg.MaintenanceIntervalHours.
func NewMaintenanceService(analyses store.AnalysisStore, cfg config.AnalysisConfig, logger *slog.Logger) *MaintenanceService {
	if logger == nil {
		logger = slog.Default()
	}
	retention := max(cfg.RetentionDays, 1)
	interval := max(cfg.MaintenanceIntervalHours, 1)
	return &MaintenanceService{
		analyses:  analyses,
		retention: time.Duration(retention) * 24 * time.Hour,
		interval:  time.Duration(interval) * time.Hour,
		now:       time.Now,
		logger:    logger.With("component", "maintenance_service"),
	}
}

// CleanupOldAnalyses deletes analyses past the retention period and returns
// how many were removed.
func (s *MaintenanceService) CleanupOldAnalyses(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cutoff := s.now().UTC().Add(-s.retention)
	deleted, err := s.analyses.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Error("failed to clean up old analyses", "error", redact.Error(err))
		return 0, fmt.Errorf("failed to clean up old analyses: %w", err)
	}

	log.Info("old analyses cleaned up", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}

// Run cleans up once per interval until ctx is cancelled.
func (s *MaintenanceService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("maintenance loop started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("maintenance loop stopped")
			return
		case <-ticker.C:
			// Errors are logged by CleanupOldAnalyses; the next tick retries.
			_, _ = s.CleanupOldAnalyses(ctx)
		}
	}
}
