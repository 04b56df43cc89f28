package domain

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID      = newValidationError("user ID cannot be empty")
	ErrInvalidEmail     = newValidationError("invalid email format")
	ErrEmptyEmail       = newValidationError("email cannot be empty")
	ErrPasswordTooShort = newValidationError("password must be at least 12 characters long")
	ErrPasswordTooLong  = newValidationError("password must be at most 72 characters long")
	ErrEmptyPassword    = newValidationError("password cannot be empty")
	ErrInvalidCulture   = newValidationError("invalid cultural background")
	ErrInvalidAnalysis  = newValidationError("invalid preferred analysis type")
	ErrInvalidPlan      = newValidationError("invalid subscription plan")
)

// Cultural backgrounds and analysis preferences a user can select.
const (
	CultureKorean  = "korean"
	CultureWestern = "western"
	CultureEastern = "eastern"

	AnalysisBalanced      = "balanced"
	AnalysisPsychological = "psychological"
	AnalysisPractical     = "practical"
)

// User represents a registered dream journal user.
type User struct {
	ID                    uuid.UUID  `json:"id"`
	Email                 string     `json:"email"`
	Password              string     `json:"-"` // plaintext, only set during registration
	HashedPassword        string     `json:"-"`
	SubscriptionPlan      PlanID     `json:"subscription_plan"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	CulturalBackground    string     `json:"cultural_background"`
	PreferredAnalysisType string     `json:"preferred_analysis_type"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// NewUser creates a free-plan user with korean/balanced analysis defaults.
// The caller must hash the password before storing the user.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:                    uuid.New(),
		Email:                 email,
		Password:              password,
		SubscriptionPlan:      PlanFree,
		CulturalBackground:    CultureKorean,
		PreferredAnalysisType: AnalysisBalanced,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	if !IsValidCulture(u.CulturalBackground) {
		return ErrInvalidCulture
	}
	if !IsValidAnalysisType(u.PreferredAnalysisType) {
		return ErrInvalidAnalysis
	}
	if _, ok := Plans[u.SubscriptionPlan]; !ok {
		return ErrInvalidPlan
	}
	return nil
}

// UpdatePreferences changes the analysis personalization settings.
func (u *User) UpdatePreferences(culture, analysisType string) error {
	if !IsValidCulture(culture) {
		return ErrInvalidCulture
	}
	if !IsValidAnalysisType(analysisType) {
		return ErrInvalidAnalysis
	}
	u.CulturalBackground = culture
	u.PreferredAnalysisType = analysisType
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValidCulture reports whether c is a supported cultural background.
func IsValidCulture(c string) bool {
	switch c {
	case CultureKorean, CultureWestern, CultureEastern:
		return true
	default:
		return false
	}
}

// IsValidAnalysisType reports whether a is a supported analysis preference.
func IsValidAnalysisType(a string) bool {
	switch a {
	case AnalysisBalanced, AnalysisPsychological, AnalysisPractical:
		return true
	default:
		return false
	}
}
