package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresAnalysisStore_Upsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("keeps existing id on conflict", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresAnalysisStore(db, discardLogger())
		a := domain.NewDreamAnalysis(uuid.New())
		a.Keywords = []string{"memory_processing"}
		a.SymbolAnalysis = json.RawMessage(`{"symbols_found":["water"]}`)
		existing := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (dream_id) DO UPDATE")).
			WithArgs(a.ID, a.DreamID, domain.DefaultAnalysisSummary, []string{"memory_processing"}, nil,
				`{"symbols_found":["water"]}`, domain.DefaultReflectiveQuestion, nil, a.CreatedAt).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existing.String()))

		require.NoError(t, s.Upsert(ctx, a))
		assert.Equal(t, existing, a.ID)
	})

	t.Run("missing dream", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresAnalysisStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO dream_analyses")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		err := s.Upsert(ctx, domain.NewDreamAnalysis(uuid.New()))
		assert.ErrorIs(t, err, store.ErrDreamNotFound)
	})
}

func TestPostgresAnalysisStore_GetByDreamID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	columns := []string{
		"id", "dream_id", "summary_text", "keywords", "emotional_flow_text",
		"symbol_analysis", "reflective_question", "deja_vu_analysis", "created_at",
	}

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresAnalysisStore(db, discardLogger())
		id, dreamID := uuid.New(), uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("FROM dream_analyses WHERE dream_id = $1")).
			WithArgs(dreamID).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				id.String(), dreamID.String(), "요약", `["creativity"]`, nil,
				[]byte(`{"confidence":0.4}`), "질문", nil, time.Now()))

		got, err := s.GetByDreamID(ctx, dreamID)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, []string{"creativity"}, got.Keywords)
		assert.Empty(t, got.EmotionalFlowText)
		assert.JSONEq(t, `{"confidence":0.4}`, string(got.SymbolAnalysis))
		assert.Nil(t, got.DejaVuAnalysis)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresAnalysisStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM dream_analyses")).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := s.GetByDreamID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrAnalysisNotFound)
	})
}

func TestPostgresAnalysisStore_DeleteOlderThan(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	s := NewPostgresAnalysisStore(db, discardLogger())
	cutoff := time.Now().AddDate(0, 0, -90)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM dream_analyses WHERE created_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := s.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
