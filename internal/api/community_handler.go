package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dreamtracer/dreamtracer-api/internal/api/shared"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

// CommunityHandler serves shared dream posts.
type CommunityHandler struct {
	community service.CommunityService
	logger    *slog.Logger
}

// NewCommunityHandler creates a CommunityHandler.
func NewCommunityHandler(community service.CommunityService, logger *slog.Logger) *CommunityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommunityHandler{community: community, logger: logger.With("component", "community_handler")}
}

// CreatePost handles POST /api/community/posts.
func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreatePostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	post, err := h.community.CreatePost(r.Context(), userID, service.PostInput{
		DreamID:     req.DreamID,
		Content:     req.Content,
		Tags:        req.Tags,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, post)
}

// ListPosts handles GET /api/community/posts with skip, limit, comma
// separated tags and an optional user_id filter.
func (h *CommunityHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter := store.PostFilter{Skip: skip, Limit: limit, Tags: splitTags(r.URL.Query().Get("tags"))}

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user_id")
			return
		}
		filter.UserID = &id
	}

	page, err := h.community.ListPosts(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list posts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// GetPost handles GET /api/community/posts/{id}.
func (h *CommunityHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	post, err := h.community.GetPost(r.Context(), postID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, post)
}

// UpdatePost handles PUT /api/community/posts/{id}.
func (h *CommunityHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdatePostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	post, err := h.community.UpdatePost(r.Context(), userID, postID, service.PostUpdate{
		Content:     req.Content,
		Tags:        req.Tags,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, post)
}

// DeletePost handles DELETE /api/community/posts/{id}.
func (h *CommunityHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.community.DeletePost(r.Context(), userID, postID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchPosts handles GET /api/community/search?q=...
func (h *CommunityHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Search query is required")
		return
	}
	skip, limit, err := pagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	posts, err := h.community.SearchPosts(r.Context(), query, skip, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search posts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{"posts": posts, "query": query})
}

// PopularTags handles GET /api/community/tags?limit=N.
func (h *CommunityHandler) PopularTags(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", service.DefaultPopularTags)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit = min(max(limit, 1), maxLimit)

	tags, err := h.community.PopularTags(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load tags")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{"tags": tags})
}
