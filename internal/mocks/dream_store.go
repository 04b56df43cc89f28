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

// DreamStore is a testify mock of store.DreamStore.
type DreamStore struct {
	mock.Mock
}

func dreams(args mock.Arguments) ([]*domain.Dream, error) {
	if ds, ok := args.Get(0).([]*domain.Dream); ok {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DreamStore) Create(ctx context.Context, dream *domain.Dream) error {
	return m.Called(ctx, dream).Error(0)
}

func (m *DreamStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dream, error) {
	args := m.Called(ctx, id)
	if d, ok := args.Get(0).(*domain.Dream); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DreamStore) Update(ctx context.Context, dream *domain.Dream) error {
	return m.Called(ctx, dream).Error(0)
}

func (m *DreamStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *DreamStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *DreamStore) List(ctx context.Context, userID uuid.UUID, filter store.DreamFilter) ([]*domain.Dream, error) {
	return dreams(m.Called(ctx, userID, filter))
}

func (m *DreamStore) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*domain.Dream, error) {
	return dreams(m.Called(ctx, userID, query, limit))
}

func (m *DreamStore) Since(ctx context.Context, userID uuid.UUID, from time.Time) ([]*domain.Dream, error) {
	return dreams(m.Called(ctx, userID, from))
}

func (m *DreamStore) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Dream, error) {
	return dreams(m.Called(ctx, userID, limit))
}

func (m *DreamStore) Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*store.DreamStats, error) {
	args := m.Called(ctx, userID, now)
	if s, ok := args.Get(0).(*store.DreamStats); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DreamStore) CountAnalysesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *DreamStore) WithTx(*sql.Tx) store.DreamStore { return m }

var _ store.DreamStore = (*DreamStore)(nil)
