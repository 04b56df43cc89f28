package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// AnalysisStore is a testify mock of store.AnalysisStore.
type AnalysisStore struct {
	mock.Mock
}

func (m *AnalysisStore) Upsert(ctx context.Context, analysis *domain.DreamAnalysis) error {
	return m.Called(ctx, analysis).Error(0)
}

func (m *AnalysisStore) GetByDreamID(ctx context.Context, dreamID uuid.UUID) (*domain.DreamAnalysis, error) {
	args := m.Called(ctx, dreamID)
	if a, ok := args.Get(0).(*domain.DreamAnalysis); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AnalysisStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AnalysisStore) WithTx(*sql.Tx) store.AnalysisStore { return m }

var _ store.AnalysisStore = (*AnalysisStore)(nil)
