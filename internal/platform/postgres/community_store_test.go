package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postColumnNames = []string{"id", "user_id", "dream_id", "content", "tags", "is_anonymous", "created_at"}

func TestPostgresCommunityStore_Create(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	s := NewPostgresCommunityStore(db, discardLogger())
	post, err := domain.NewCommunityPost(uuid.New(), nil, "  하늘을 나는 꿈을 꿨어요  ", []string{"flying"}, true)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO community_posts")).
		WithArgs(post.ID, post.UserID, nil, "하늘을 나는 꿈을 꿨어요", []string{"flying"}, true, post.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), post))
}

func TestPostgresCommunityStore_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("filters by tags and user", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresCommunityStore(db, discardLogger())
		userID, dreamID := uuid.New(), uuid.New()
		tags := []string{"flying", "sky"}

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM community_posts WHERE tags @> $1 AND user_id = $2")).
			WithArgs(tags, userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(31))
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $3 OFFSET $4")).
			WithArgs(tags, userID, 10, 20).
			WillReturnRows(sqlmock.NewRows(postColumnNames).AddRow(
				uuid.NewString(), userID.String(), dreamID.String(), "하늘을 나는 꿈을 꿨어요",
				`["flying","sky"]`, false, time.Now()))

		posts, total, err := s.List(ctx, store.PostFilter{Skip: 20, Limit: 10, Tags: tags, UserID: &userID})
		require.NoError(t, err)
		assert.Equal(t, 31, total)
		require.Len(t, posts, 1)
		require.NotNil(t, posts[0].DreamID)
		assert.Equal(t, dreamID, *posts[0].DreamID)
		assert.Equal(t, tags, posts[0].Tags)
	})

	t.Run("unfiltered", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresCommunityStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM community_posts")).
			WithArgs().
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
			WithArgs(store.DefaultListLimit, 0).
			WillReturnRows(sqlmock.NewRows(postColumnNames))

		posts, total, err := s.List(ctx, store.PostFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, posts)
	})
}

func TestPostgresCommunityStore_GetByID(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	s := NewPostgresCommunityStore(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("FROM community_posts WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(postColumnNames))

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrPostNotFound)
}

func TestPostgresCommunityStore_PopularTags(t *testing.T) {
	t.Parallel()
	db, mock := newMock(t)
	s := NewPostgresCommunityStore(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("unnest(tags)")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"tag", "n"}).AddRow("flying", 8).AddRow("water", 3))

	tags, err := s.PopularTags(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []store.TagCount{{Value: "flying", Count: 8}, {Value: "water", Count: 3}}, tags)
}
