package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

const postColumns = `id, user_id, dream_id, content, array_to_json(tags), is_anonymous, created_at`

// PostgresCommunityStore implements store.CommunityStore.
type PostgresCommunityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommunityStore creates a community store on db. A nil logger uses slog.Default().
func NewPostgresCommunityStore(db store.DBTX, logger *slog.Logger) *PostgresCommunityStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommunityStore{
		db:     db,
		logger: logger.With(slog.String("component", "community_store")),
	}
}

var _ store.CommunityStore = (*PostgresCommunityStore)(nil)

// WithTx implements store.CommunityStore.
func (s *PostgresCommunityStore) WithTx(tx *sql.Tx) store.CommunityStore {
	return &PostgresCommunityStore{db: tx, logger: s.logger}
}

// Create implements store.CommunityStore.
func (s *PostgresCommunityStore) Create(ctx context.Context, post *domain.CommunityPost) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := post.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO community_posts (id, user_id, dream_id, content, tags, is_anonymous, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		post.ID, post.UserID, post.DreamID, post.Content, nonNil(post.Tags), post.IsAnonymous, post.CreatedAt)
	if err != nil {
		log.Error("failed to create community post",
			slog.String("error", redact.Error(err)),
			slog.String("post_id", post.ID.String()))
		return MapError(err)
	}

	log.Info("community post created",
		slog.String("post_id", post.ID.String()),
		slog.Bool("anonymous", post.IsAnonymous))
	return nil
}

// GetByID implements store.CommunityStore.
func (s *PostgresCommunityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CommunityPost, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM community_posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPostNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get community post",
			slog.String("error", redact.Error(err)),
			slog.String("post_id", id.String()))
		return nil, MapError(err)
	}
	return post, nil
}

// Update implements store.CommunityStore.
func (s *PostgresCommunityStore) Update(ctx context.Context, post *domain.CommunityPost) error {
	if err := post.Validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE community_posts SET content = $1, tags = $2, is_anonymous = $3
		WHERE id = $4`,
		post.Content, nonNil(post.Tags), post.IsAnonymous, post.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update community post",
			slog.String("error", redact.Error(err)),
			slog.String("post_id", post.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPostNotFound)
}

// Delete implements store.CommunityStore.
func (s *PostgresCommunityStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM community_posts WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete community post",
			slog.String("error", redact.Error(err)),
			slog.String("post_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPostNotFound)
}

// List implements store.CommunityStore.
func (s *PostgresCommunityStore) List(
	ctx context.Context,
	filter store.PostFilter,
) ([]*domain.CommunityPost, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	skip, limit := clampPage(filter.Skip, filter.Limit, store.DefaultListLimit)

	var (
		where []string
		args  []any
	)
	if len(filter.Tags) > 0 {
		args = append(args, filter.Tags)
		where = append(where, fmt.Sprintf("tags @> $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM community_posts `+clause, args...).Scan(&total); err != nil {
		log.Error("failed to count community posts", slog.String("error", redact.Error(err)))
		return nil, 0, MapError(err)
	}

	args = append(args, limit, skip)
	query := fmt.Sprintf(`SELECT %s FROM community_posts %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		postColumns, clause, len(args)-1, len(args))
	posts, err := s.queryPosts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Search implements store.CommunityStore.
func (s *PostgresCommunityStore) Search(
	ctx context.Context,
	query string,
	skip, limit int,
) ([]*domain.CommunityPost, error) {
	skip, limit = clampPage(skip, limit, store.DefaultListLimit)
	return s.queryPosts(ctx, `
		SELECT `+postColumns+` FROM community_posts
		WHERE content ILIKE $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		"%"+escapeLike(query)+"%", limit, skip)
}

// PopularTags implements store.CommunityStore.
func (s *PostgresCommunityStore) PopularTags(ctx context.Context, limit int) ([]store.TagCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, COUNT(*) AS n
		FROM community_posts, unnest(tags) AS tag
		GROUP BY tag
		ORDER BY n DESC, tag
		LIMIT $1`, limit)
	if err != nil {
		log.Error("failed to aggregate popular tags", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer closeRows(log, rows)
	return scanTagCounts(rows)
}

func (s *PostgresCommunityStore) queryPosts(ctx context.Context, query string, args ...any) ([]*domain.CommunityPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query community posts", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer closeRows(log, rows)

	posts := []*domain.CommunityPost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, MapError(err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return posts, nil
}

func scanPost(row rowScanner) (*domain.CommunityPost, error) {
	var (
		p       domain.CommunityPost
		dreamID uuid.NullUUID
		tags    textList
	)
	if err := row.Scan(&p.ID, &p.UserID, &dreamID, &p.Content, &tags, &p.IsAnonymous, &p.CreatedAt); err != nil {
		return nil, err
	}
	if dreamID.Valid {
		id := dreamID.UUID
		p.DreamID = &id
	}
	p.Tags = []string(tags)
	return &p, nil
}
