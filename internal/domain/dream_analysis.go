package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Fallback texts stored when the pipeline produced nothing usable.
const (
	DefaultAnalysisSummary    = "현대적 분석이 완료되었습니다."
	DefaultReflectiveQuestion = "이 꿈이 당신에게 어떤 의미를 주나요?"
)

var ErrEmptyAnalysisDreamID = newValidationError("analysis dream ID cannot be empty")

// DreamAnalysis is the persisted outcome of analyzing one dream. There is at
// most one per dream; re-analysis replaces it.
type DreamAnalysis struct {
	ID                 uuid.UUID       `json:"id"`
	DreamID            uuid.UUID       `json:"dream_id"`
	SummaryText        string          `json:"summary_text"`
	Keywords           []string        `json:"keywords"`
	EmotionalFlowText  string          `json:"emotional_flow_text,omitempty"`
	SymbolAnalysis     json.RawMessage `json:"symbol_analysis,omitempty"`
	ReflectiveQuestion string          `json:"reflective_question"`
	DejaVuAnalysis     json.RawMessage `json:"deja_vu_analysis,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// NewDreamAnalysis creates an analysis for dreamID with fallback texts set.
func NewDreamAnalysis(dreamID uuid.UUID) *DreamAnalysis {
	return &DreamAnalysis{
		ID:                 uuid.New(),
		DreamID:            dreamID,
		SummaryText:        DefaultAnalysisSummary,
		Keywords:           []string{},
		ReflectiveQuestion: DefaultReflectiveQuestion,
		CreatedAt:          time.Now().UTC(),
	}
}

// Validate checks if the DreamAnalysis has valid data.
func (a *DreamAnalysis) Validate() error {
	if a.ID == uuid.Nil {
		return ErrInvalidID
	}
	if a.DreamID == uuid.Nil {
		return ErrEmptyAnalysisDreamID
	}
	return nil
}
