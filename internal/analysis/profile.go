package analysis

import (
	"time"

	"github.com/google/uuid"
)

// Culture identifies the cultural adapter applied during personalization.
type Culture string

const (
	CultureKorean  Culture = "korean"
	CultureWestern Culture = "western"
	CultureEastern Culture = "eastern"
)

// Preference controls the emphasis step of personalization.
type Preference string

const (
	PreferenceBalanced      Preference = "balanced"
	PreferencePsychological Preference = "psychological"
	PreferencePractical     Preference = "practical"
)

// ParseCulture returns the matching culture, falling back to korean for
// unknown or empty values.
func ParseCulture(s string) Culture {
	switch Culture(s) {
	case CultureWestern:
		return CultureWestern
	case CultureEastern:
		return CultureEastern
	default:
		return CultureKorean
	}
}

// ParsePreference returns the matching preference, falling back to balanced.
func ParsePreference(s string) Preference {
	switch Preference(s) {
	case PreferencePsychological:
		return PreferencePsychological
	case PreferencePractical:
		return PreferencePractical
	default:
		return PreferenceBalanced
	}
}

// HistoryEntry is a snapshot of a past dream used for pattern mining.
type HistoryEntry struct {
	BodyText      string    `json:"body_text"`
	EmotionTags   []string  `json:"emotion_tags,omitempty"`
	Symbols       []string  `json:"symbols,omitempty"`
	LucidityLevel *int      `json:"lucidity_level,omitempty"`
	DreamDate     time.Time `json:"dream_date"`
}

// Preferences holds the user's analysis preferences.
type Preferences struct {
	PreferredAnalysisType Preference `json:"preferred_analysis_type"`
}

// UserProfile is the caller-supplied context for one analysis run.
//
// DreamHistory is read in slice order: the last element is treated as the
// most recent entry. Callers must sort it oldest first.
type UserProfile struct {
	UserID             uuid.UUID      `json:"user_id"`
	CulturalBackground Culture        `json:"cultural_background"`
	DreamHistory       []HistoryEntry `json:"dream_history"`
	Preferences        Preferences    `json:"preferences"`
}
