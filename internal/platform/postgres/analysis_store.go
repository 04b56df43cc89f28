package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

// PostgresAnalysisStore implements store.AnalysisStore.
type PostgresAnalysisStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAnalysisStore creates an analysis store on db. A nil logger uses slog.Default().
func NewPostgresAnalysisStore(db store.DBTX, logger *slog.Logger) *PostgresAnalysisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAnalysisStore{
		db:     db,
		logger: logger.With(slog.String("component", "analysis_store")),
	}
}

var _ store.AnalysisStore = (*PostgresAnalysisStore)(nil)

// WithTx implements store.AnalysisStore.
func (s *PostgresAnalysisStore) WithTx(tx *sql.Tx) store.AnalysisStore {
	return &PostgresAnalysisStore{db: tx, logger: s.logger}
}

// Upsert implements store.AnalysisStore. On conflict the existing row keeps
// its id and takes every other column from a.
func (s *PostgresAnalysisStore) Upsert(ctx context.Context, a *domain.DreamAnalysis) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO dream_analyses (id, dream_id, summary_text, keywords, emotional_flow_text,
			symbol_analysis, reflective_question, deja_vu_analysis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (dream_id) DO UPDATE SET
			summary_text = EXCLUDED.summary_text,
			keywords = EXCLUDED.keywords,
			emotional_flow_text = EXCLUDED.emotional_flow_text,
			symbol_analysis = EXCLUDED.symbol_analysis,
			reflective_question = EXCLUDED.reflective_question,
			deja_vu_analysis = EXCLUDED.deja_vu_analysis,
			created_at = EXCLUDED.created_at
		RETURNING id`,
		a.ID,
		a.DreamID,
		a.SummaryText,
		nonNil(a.Keywords),
		nullString(a.EmotionalFlowText),
		nullJSON(a.SymbolAnalysis),
		a.ReflectiveQuestion,
		nullJSON(a.DejaVuAnalysis),
		a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrDreamNotFound
		}
		log.Error("failed to upsert dream analysis",
			slog.String("error", redact.Error(err)),
			slog.String("dream_id", a.DreamID.String()))
		return MapError(err)
	}

	log.Info("dream analysis saved",
		slog.String("analysis_id", a.ID.String()),
		slog.String("dream_id", a.DreamID.String()))
	return nil
}

// GetByDreamID implements store.AnalysisStore.
func (s *PostgresAnalysisStore) GetByDreamID(ctx context.Context, dreamID uuid.UUID) (*domain.DreamAnalysis, error) {
	var (
		a               domain.DreamAnalysis
		keywords        textList
		flow            sql.NullString
		symbols, dejaVu []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, dream_id, summary_text, array_to_json(keywords), emotional_flow_text,
			symbol_analysis, reflective_question, deja_vu_analysis, created_at
		FROM dream_analyses WHERE dream_id = $1`, dreamID,
	).Scan(&a.ID, &a.DreamID, &a.SummaryText, &keywords, &flow, &symbols, &a.ReflectiveQuestion, &dejaVu, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAnalysisNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get dream analysis",
			slog.String("error", redact.Error(err)),
			slog.String("dream_id", dreamID.String()))
		return nil, MapError(err)
	}
	a.Keywords = []string(keywords)
	a.EmotionalFlowText = flow.String
	if len(symbols) > 0 {
		a.SymbolAnalysis = append([]byte(nil), symbols...)
	}
	if len(dejaVu) > 0 {
		a.DejaVuAnalysis = append([]byte(nil), dejaVu...)
	}
	return &a, nil
}

// DeleteOlderThan implements store.AnalysisStore.
func (s *PostgresAnalysisStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM dream_analyses WHERE created_at < $1`, cutoff)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete old analyses",
			slog.String("error", redact.Error(err)))
		return 0, MapError(err)
	}
	return result.RowsAffected()
}
