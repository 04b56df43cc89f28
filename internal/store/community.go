package store

import (
	"context"
	"database/sql"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/google/uuid"
)

// PostFilter narrows a community post listing.
type PostFilter struct {
	Skip   int
	Limit  int
	Tags   []string
	UserID *uuid.UUID
}

// CommunityStore persists community posts.
type CommunityStore interface {
	Create(ctx context.Context, post *domain.CommunityPost) error

	// GetByID returns ErrPostNotFound if the post does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CommunityPost, error)

	Update(ctx context.Context, post *domain.CommunityPost) error

	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of posts, newest first, and the total number of
	// posts matching the filter.
	List(ctx context.Context, filter PostFilter) ([]*domain.CommunityPost, int, error)

	// Search matches query against post content, case-insensitively.
	Search(ctx context.Context, query string, skip, limit int) ([]*domain.CommunityPost, error)

	// PopularTags returns up to limit tags ordered by usage.
	PopularTags(ctx context.Context, limit int) ([]TagCount, error)

	WithTx(tx *sql.Tx) CommunityStore
}
