package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/google/uuid"
)

// AnalysisStore persists dream analyses, one per dream.
type AnalysisStore interface {
	// Upsert inserts the analysis or replaces the existing one for its dream.
	Upsert(ctx context.Context, analysis *domain.DreamAnalysis) error

	// GetByDreamID returns ErrAnalysisNotFound if the dream has no analysis.
	GetByDreamID(ctx context.Context, dreamID uuid.UUID) (*domain.DreamAnalysis, error)

	// DeleteOlderThan removes analyses created before cutoff and returns how
	// many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	WithTx(tx *sql.Tx) AnalysisStore
}
