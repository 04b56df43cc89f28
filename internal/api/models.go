package api

import (
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
	"github.com/google/uuid"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    string    `json:"expires_at"`
}

// UpdatePreferencesRequest is the body of PUT /api/users/me.
type UpdatePreferencesRequest struct {
	CulturalBackground    string `json:"cultural_background"     validate:"required,oneof=korean western eastern"`
	PreferredAnalysisType string `json:"preferred_analysis_type" validate:"required,oneof=balanced psychological practical"`
}

// CreateDreamRequest is the body of POST /api/dreams. DreamDate defaults to
// today.
type CreateDreamRequest struct {
	DreamDate     string   `json:"dream_date"     validate:"omitempty,datetime=2006-01-02"`
	Title         string   `json:"title"          validate:"max=100"`
	BodyText      string   `json:"body_text"`
	LucidityLevel *int     `json:"lucidity_level" validate:"omitempty,min=1,max=5"`
	EmotionTags   []string `json:"emotion_tags"   validate:"max=5"`
	DreamType     string   `json:"dream_type"     validate:"omitempty,oneof=lucid nightmare normal recurring"`
	SleepQuality  *int     `json:"sleep_quality"  validate:"omitempty,min=1,max=5"`
	DreamDuration *int     `json:"dream_duration" validate:"omitempty,gte=0"`
	Location      string   `json:"location"       validate:"max=100"`
	Characters    []string `json:"characters"     validate:"max=10"`
	Symbols       []string `json:"symbols"        validate:"max=15"`
	IsShared      bool     `json:"is_shared"`
}

// UpdateDreamRequest is the body of PUT /api/dreams/{id}. Absent fields are
// left unchanged.
type UpdateDreamRequest struct {
	DreamDate     *string  `json:"dream_date"     validate:"omitempty,datetime=2006-01-02"`
	Title         *string  `json:"title"          validate:"omitempty,max=100"`
	BodyText      *string  `json:"body_text"`
	LucidityLevel *int     `json:"lucidity_level" validate:"omitempty,min=1,max=5"`
	EmotionTags   []string `json:"emotion_tags"   validate:"omitempty,max=5"`
	DreamType     *string  `json:"dream_type"     validate:"omitempty,oneof=lucid nightmare normal recurring"`
	SleepQuality  *int     `json:"sleep_quality"  validate:"omitempty,min=1,max=5"`
	DreamDuration *int     `json:"dream_duration" validate:"omitempty,gte=0"`
	Location      *string  `json:"location"       validate:"omitempty,max=100"`
	Characters    []string `json:"characters"     validate:"omitempty,max=10"`
	Symbols       []string `json:"symbols"        validate:"omitempty,max=15"`
	IsShared      *bool    `json:"is_shared"`
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// toInput converts the request; DreamDate has already been validated.
func (req CreateDreamRequest) toInput() service.DreamInput {
	in := service.DreamInput{
		Title:         req.Title,
		BodyText:      req.BodyText,
		LucidityLevel: req.LucidityLevel,
		EmotionTags:   req.EmotionTags,
		DreamType:     domain.DreamType(req.DreamType),
		SleepQuality:  req.SleepQuality,
		DreamDuration: req.DreamDuration,
		Location:      req.Location,
		Characters:    req.Characters,
		Symbols:       req.Symbols,
		IsShared:      req.IsShared,
	}
	if req.DreamDate != "" {
		in.DreamDate, _ = parseDate(req.DreamDate)
	}
	return in
}

func (req UpdateDreamRequest) toUpdate() service.DreamUpdate {
	upd := service.DreamUpdate{
		Title:         req.Title,
		BodyText:      req.BodyText,
		LucidityLevel: req.LucidityLevel,
		EmotionTags:   req.EmotionTags,
		SleepQuality:  req.SleepQuality,
		DreamDuration: req.DreamDuration,
		Location:      req.Location,
		Characters:    req.Characters,
		Symbols:       req.Symbols,
		IsShared:      req.IsShared,
	}
	if req.DreamDate != nil {
		if d, err := parseDate(*req.DreamDate); err == nil {
			upd.DreamDate = &d
		}
	}
	if req.DreamType != nil {
		t := domain.DreamType(*req.DreamType)
		upd.DreamType = &t
	}
	return upd
}

// DreamListResponse wraps a page of dreams.
type DreamListResponse struct {
	Dreams []*domain.Dream `json:"dreams"`
	Skip   int             `json:"skip"`
	Limit  int             `json:"limit"`
}

// AnalyzeResponse is returned when a background analysis is queued.
type AnalyzeResponse struct {
	Message string    `json:"message"`
	TaskID  uuid.UUID `json:"task_id"`
	DreamID uuid.UUID `json:"dream_id"`
	Status  string    `json:"status"`
}

// CreatePostRequest is the body of POST /api/community/posts.
type CreatePostRequest struct {
	DreamID     *uuid.UUID `json:"dream_id"`
	Content     string     `json:"content"      validate:"required,min=10,max=2000"`
	Tags        []string   `json:"tags"         validate:"max=10,dive,required"`
	IsAnonymous bool       `json:"is_anonymous"`
}

// UpdatePostRequest is the body of PUT /api/community/posts/{id}.
type UpdatePostRequest struct {
	Content     *string  `json:"content"      validate:"omitempty,min=10,max=2000"`
	Tags        []string `json:"tags"         validate:"omitempty,max=10,dive,required"`
	IsAnonymous *bool    `json:"is_anonymous"`
}

// UpgradeRequest is the body of POST /api/subscription/upgrade.
type UpgradeRequest struct {
	PlanID        string `json:"plan_id"        validate:"required,oneof=free plus"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// MessageResponse carries a single message.
type MessageResponse struct {
	Message string `json:"message"`
}
