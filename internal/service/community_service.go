package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

// DefaultPopularTags is the popular tag count when none is given.
const DefaultPopularTags = 20

// PostInput holds the fields of a new community post.
type PostInput struct {
	DreamID     *uuid.UUID
	Content     string
	Tags        []string
	IsAnonymous bool
}

// PostUpdate holds the fields to change on a post. Nil fields are kept.
type PostUpdate struct {
	Content     *string
	Tags        []string
	IsAnonymous *bool
}

// PostAuthor identifies who wrote a post. ID is nil for anonymous posts.
type PostAuthor struct {
	ID   *uuid.UUID `json:"id"`
	Name string     `json:"name"`
}

// PostView is a community post as shown to readers.
type PostView struct {
	ID          uuid.UUID  `json:"id"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	IsAnonymous bool       `json:"is_anonymous"`
	CreatedAt   time.Time  `json:"created_at"`
	DreamID     *uuid.UUID `json:"dream_id"`
	User        PostAuthor `json:"user"`
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts       []PostView `json:"posts"`
	TotalCount  int        `json:"total_count"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	HasNext     bool       `json:"has_next"`
	HasPrevious bool       `json:"has_previous"`
}

// NewPostView hides the author of anonymous posts.
func NewPostView(p *domain.CommunityPost) PostView {
	view := PostView{
		ID:          p.ID,
		Content:     p.Content,
		Tags:        nonNilStrings(p.Tags),
		IsAnonymous: p.IsAnonymous,
		CreatedAt:   p.CreatedAt,
		DreamID:     p.DreamID,
		User:        PostAuthor{Name: p.AuthorName()},
	}
	if !p.IsAnonymous {
		id := p.UserID
		view.User.ID = &id
	}
	return view
}

func postViews(posts []*domain.CommunityPost) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, NewPostView(p))
	}
	return views
}

// CommunityService manages shared dream posts.
type CommunityService interface {
	// CreatePost publishes a post. A linked dream must belong to userID.
	CreatePost(ctx context.Context, userID uuid.UUID, in PostInput) (*PostView, error)

	ListPosts(ctx context.Context, filter store.PostFilter) (*PostPage, error)

	GetPost(ctx context.Context, postID uuid.UUID) (*PostView, error)

	// UpdatePost and DeletePost return ErrNotOwned for other users' posts.
	UpdatePost(ctx context.Context, userID, postID uuid.UUID, upd PostUpdate) (*PostView, error)
	DeletePost(ctx context.Context, userID, postID uuid.UUID) error

	SearchPosts(ctx context.Context, query string, skip, limit int) ([]PostView, error)

	PopularTags(ctx context.Context, limit int) ([]store.TagCount, error)
}

type communityService struct {
	posts  store.CommunityStore
	dreams store.DreamStore
	logger *slog.Logger
}

// NewCommunityService creates a CommunityService.
func NewCommunityService(posts store.CommunityStore, dreams store.DreamStore, logger *slog.Logger) CommunityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &communityService{
		posts:  posts,
		dreams: dreams,
		logger: logger.With("component", "community_service"),
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	return out
}

func (s *communityService) CreatePost(ctx context.Context, userID uuid.UUID, in PostInput) (*PostView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.DreamID != nil {
		if _, err := ownedDream(ctx, s.dreams, userID, *in.DreamID); err != nil {
			return nil, err
		}
	}

	post, err := domain.NewCommunityPost(userID, in.DreamID, in.Content, cleanTags(in.Tags), in.IsAnonymous)
	if err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		log.Error("failed to create post", "error", redact.Error(err), "user_id", userID)
		return nil, NewServiceError("create_post", "failed to save post", err)
	}

	log.Info("community post created", "post_id", post.ID)
	view := NewPostView(post)
	return &view, nil
}

func (s *communityService) ListPosts(ctx context.Context, filter store.PostFilter) (*PostPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = store.DefaultListLimit
	}
	filter.Skip = max(filter.Skip, 0)

	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return &PostPage{
		Posts:       postViews(posts),
		TotalCount:  total,
		Page:        filter.Skip/filter.Limit + 1,
		PageSize:    filter.Limit,
		HasNext:     filter.Skip+filter.Limit < total,
		HasPrevious: filter.Skip > 0,
	}, nil
}

func (s *communityService) GetPost(ctx context.Context, postID uuid.UUID) (*PostView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	view := NewPostView(post)
	return &view, nil
}

func (s *communityService) ownedPost(ctx context.Context, userID, postID uuid.UUID) (*domain.CommunityPost, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotOwned
	}
	return post, nil
}

func (s *communityService) UpdatePost(
	ctx context.Context,
	userID, postID uuid.UUID,
	upd PostUpdate,
) (*PostView, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if upd.Content != nil {
		post.Content = strings.TrimSpace(*upd.Content)
	}
	if upd.Tags != nil {
		post.Tags = cleanTags(upd.Tags)
	}
	if upd.IsAnonymous != nil {
		post.IsAnonymous = *upd.IsAnonymous
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}

	if err := s.posts.Update(ctx, post); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update post",
			"error", redact.Error(err),
			"post_id", postID)
		return nil, NewServiceError("update_post", "failed to save post", err)
	}
	view := NewPostView(post)
	return &view, nil
}

func (s *communityService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("community post deleted", "post_id", postID)
	return nil
}

func (s *communityService) SearchPosts(ctx context.Context, query string, skip, limit int) ([]PostView, error) {
	posts, err := s.posts.Search(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return postViews(posts), nil
}

func (s *communityService) PopularTags(ctx context.Context, limit int) ([]store.TagCount, error) {
	if limit <= 0 {
		limit = DefaultPopularTags
	}
	tags, err := s.posts.PopularTags(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular tags: %w", err)
	}
	return tags, nil
}
