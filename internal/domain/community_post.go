package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinPostContentLength = 10
	MaxPostContentLength = 2000
	MaxPostTags          = 10

	// AnonymousAuthorName is shown instead of the author for anonymous posts.
	AnonymousAuthorName = "익명"
)

// Community post validation errors
var (
	ErrEmptyPostUserID = newValidationError("post user ID cannot be empty")
	ErrPostTooShort    = newValidationError("post content must be at least 10 characters")
	ErrPostTooLong     = newValidationError("post content must be at most 2000 characters")
	ErrTooManyPostTags = newValidationError("at most 10 tags can be selected")
	ErrEmptyPostTag    = newValidationError("tags cannot be empty")
)

// CommunityPost is a dream-related post shared with other users.
type CommunityPost struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	DreamID     *uuid.UUID `json:"dream_id,omitempty"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	IsAnonymous bool       `json:"is_anonymous"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewCommunityPost creates a validated post. Content is trimmed.
func NewCommunityPost(userID uuid.UUID, dreamID *uuid.UUID, content string, tags []string, anonymous bool) (*CommunityPost, error) {
	if tags == nil {
		tags = []string{}
	}
	post := &CommunityPost{
		ID:          uuid.New(),
		UserID:      userID,
		DreamID:     dreamID,
		Content:     strings.TrimSpace(content),
		Tags:        tags,
		IsAnonymous: anonymous,
		CreatedAt:   time.Now().UTC(),
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	return post, nil
}

// Validate checks if the CommunityPost has valid data.
func (p *CommunityPost) Validate() error {
	if p.ID == uuid.Nil {
		return ErrInvalidID
	}
	if p.UserID == uuid.Nil {
		return ErrEmptyPostUserID
	}
	n := utf8.RuneCountInString(strings.TrimSpace(p.Content))
	if n < MinPostContentLength {
		return ErrPostTooShort
	}
	if n > MaxPostContentLength {
		return ErrPostTooLong
	}
	if len(p.Tags) > MaxPostTags {
		return ErrTooManyPostTags
	}
	for _, tag := range p.Tags {
		if strings.TrimSpace(tag) == "" {
			return ErrEmptyPostTag
		}
	}
	return nil
}

// AuthorName is the display name shown to other users.
func (p *CommunityPost) AuthorName() string {
	if p.IsAnonymous {
		return AnonymousAuthorName
	}
	return "사용자" + p.UserID.String()[:8]
}
