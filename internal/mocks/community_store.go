package mocks

import (
	"context"
	"database/sql"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// CommunityStore is a testify mock of store.CommunityStore.
type CommunityStore struct {
	mock.Mock
}

func posts(args mock.Arguments) []*domain.CommunityPost {
	ps, _ := args.Get(0).([]*domain.CommunityPost)
	return ps
}

func (m *CommunityStore) Create(ctx context.Context, post *domain.CommunityPost) error {
	return m.Called(ctx, post).Error(0)
}

func (m *CommunityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CommunityPost, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.CommunityPost); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CommunityStore) Update(ctx context.Context, post *domain.CommunityPost) error {
	return m.Called(ctx, post).Error(0)
}

func (m *CommunityStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CommunityStore) List(ctx context.Context, filter store.PostFilter) ([]*domain.CommunityPost, int, error) {
	args := m.Called(ctx, filter)
	return posts(args), args.Int(1), args.Error(2)
}

func (m *CommunityStore) Search(ctx context.Context, query string, skip, limit int) ([]*domain.CommunityPost, error) {
	args := m.Called(ctx, query, skip, limit)
	return posts(args), args.Error(1)
}

func (m *CommunityStore) PopularTags(ctx context.Context, limit int) ([]store.TagCount, error) {
	args := m.Called(ctx, limit)
	tags, _ := args.Get(0).([]store.TagCount)
	return tags, args.Error(1)
}

func (m *CommunityStore) WithTx(*sql.Tx) store.CommunityStore { return m }

var _ store.CommunityStore = (*CommunityStore)(nil)
