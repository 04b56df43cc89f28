package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// AnalysisStatus represents the analysis state of a dream.
type AnalysisStatus string

const (
	AnalysisStatusPending    AnalysisStatus = "pending"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// DreamType classifies a dream. The empty value means unspecified.
type DreamType string

const (
	DreamTypeLucid     DreamType = "lucid"
	DreamTypeNightmare DreamType = "nightmare"
	DreamTypeNormal    DreamType = "normal"
	DreamTypeRecurring DreamType = "recurring"
)

// EmotionTags users may attach to a dream.
var EmotionTags = []string{
	"happy", "sad", "angry", "fearful", "peaceful", "excited",
	"confused", "nostalgic", "lonely", "loved", "anxious", "calm",
}

const (
	MaxTitleLength    = 100
	MaxLocationLength = 100
	MaxEmotionTags    = 5
	MaxCharacters     = 10
	MaxSymbols        = 15
)

// Dream validation errors
var (
	ErrEmptyDreamID         = newValidationError("dream ID cannot be empty")
	ErrEmptyDreamUserID     = newValidationError("dream user ID cannot be empty")
	ErrEmptyDreamDate       = newValidationError("dream date cannot be empty")
	ErrTitleTooLong         = newValidationError("title must be at most 100 characters")
	ErrLocationTooLong      = newValidationError("location must be at most 100 characters")
	ErrInvalidLucidity      = newValidationError("lucidity level must be between 1 and 5")
	ErrInvalidSleepQuality  = newValidationError("sleep quality must be between 1 and 5")
	ErrInvalidDuration      = newValidationError("dream duration cannot be negative")
	ErrInvalidDreamType     = newValidationError("invalid dream type")
	ErrInvalidEmotionTag    = newValidationError("invalid emotion tag")
	ErrTooManyEmotionTags   = newValidationError("at most 5 emotion tags can be selected")
	ErrTooManyCharacters    = newValidationError("at most 10 characters can be recorded")
	ErrTooManySymbols       = newValidationError("at most 15 symbols can be recorded")
	ErrInvalidAnalysisState = newValidationError("invalid analysis status")
)

// Dream is a single dream journal entry.
type Dream struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	DreamDate      time.Time      `json:"dream_date"`
	Title          string         `json:"title,omitempty"`
	BodyText       string         `json:"body_text,omitempty"`
	AudioFilePath  string         `json:"audio_file_path,omitempty"`
	LucidityLevel  *int           `json:"lucidity_level,omitempty"`
	EmotionTags    []string       `json:"emotion_tags"`
	AnalysisStatus AnalysisStatus `json:"analysis_status"`
	IsShared       bool           `json:"is_shared"`
	DreamType      DreamType      `json:"dream_type,omitempty"`
	SleepQuality   *int           `json:"sleep_quality,omitempty"`
	DreamDuration  *int           `json:"dream_duration,omitempty"`
	Location       string         `json:"location,omitempty"`
	Characters     []string       `json:"characters"`
	Symbols        []string       `json:"symbols"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewDream creates a pending dream for userID on dreamDate. Optional fields
// are set by the caller before calling Validate.
func NewDream(userID uuid.UUID, dreamDate time.Time) *Dream {
	now := time.Now().UTC()
	return &Dream{
		ID:             uuid.New(),
		UserID:         userID,
		DreamDate:      TruncateToDate(dreamDate),
		EmotionTags:    []string{},
		Characters:     []string{},
		Symbols:        []string{},
		AnalysisStatus: AnalysisStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate checks if the Dream has valid data.
func (d *Dream) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDreamID
	}
	if d.UserID == uuid.Nil {
		return ErrEmptyDreamUserID
	}
	if d.DreamDate.IsZero() {
		return ErrEmptyDreamDate
	}
	if utf8.RuneCountInString(d.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(d.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	if !inRange(d.LucidityLevel, 1, 5) {
		return ErrInvalidLucidity
	}
	if !inRange(d.SleepQuality, 1, 5) {
		return ErrInvalidSleepQuality
	}
	if d.DreamDuration != nil && *d.DreamDuration < 0 {
		return ErrInvalidDuration
	}
	if d.DreamType != "" && !IsValidDreamType(d.DreamType) {
		return ErrInvalidDreamType
	}
	if len(d.EmotionTags) > MaxEmotionTags {
		return ErrTooManyEmotionTags
	}
	for _, tag := range d.EmotionTags {
		if !IsValidEmotionTag(tag) {
			return fmt.Errorf("%w: %s", ErrInvalidEmotionTag, tag)
		}
	}
	if len(d.Characters) > MaxCharacters {
		return ErrTooManyCharacters
	}
	if len(d.Symbols) > MaxSymbols {
		return ErrTooManySymbols
	}
	if !isValidAnalysisStatus(d.AnalysisStatus) {
		return ErrInvalidAnalysisState
	}
	return nil
}

// UpdateStatus sets the analysis status and bumps UpdatedAt.
func (d *Dream) UpdateStatus(status AnalysisStatus) error {
	if !isValidAnalysisStatus(status) {
		return ErrInvalidAnalysisState
	}
	d.AnalysisStatus = status
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// CanRequestAnalysis reports whether an asynchronous analysis may be queued.
// Dreams already being analyzed or already analyzed are rejected.
func (d *Dream) CanRequestAnalysis() bool {
	return d.AnalysisStatus != AnalysisStatusProcessing && d.AnalysisStatus != AnalysisStatusCompleted
}

// AnalysisText is the text fed to the analysis pipeline: title and body
// joined by a space.
func (d *Dream) AnalysisText() string {
	return strings.TrimSpace(d.Title + " " + d.BodyText)
}

// IsValidDreamType reports whether t is a known dream type.
func IsValidDreamType(t DreamType) bool {
	switch t {
	case DreamTypeLucid, DreamTypeNightmare, DreamTypeNormal, DreamTypeRecurring:
		return true
	default:
		return false
	}
}

// IsValidEmotionTag reports whether tag is one of EmotionTags.
func IsValidEmotionTag(tag string) bool {
	for _, t := range EmotionTags {
		if t == tag {
			return true
		}
	}
	return false
}

// TruncateToDate drops the time of day, keeping the calendar date in UTC.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isValidAnalysisStatus(status AnalysisStatus) bool {
	switch status {
	case AnalysisStatusPending, AnalysisStatusProcessing, AnalysisStatusCompleted, AnalysisStatusFailed:
		return true
	default:
		return false
	}
}

func inRange(v *int, lo, hi int) bool {
	return v == nil || (*v >= lo && *v <= hi)
}
