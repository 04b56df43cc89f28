package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/google/uuid"
)

// DefaultListLimit applies when a list query omits its limit.
const DefaultListLimit = 20

// DreamFilter narrows a dream listing. Zero values disable a filter.
type DreamFilter struct {
	Skip      int
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
	DreamType domain.DreamType
	Emotion   string
}

// DreamStats aggregates a user's journal.
type DreamStats struct {
	TotalDreams           int            `json:"total_dreams"`
	DreamsThisMonth       int            `json:"dreams_this_month"`
	DreamsThisWeek        int            `json:"dreams_this_week"`
	AverageLucidity       *float64       `json:"average_lucidity"`
	AverageSleepQuality   *float64       `json:"average_sleep_quality"`
	MostCommonEmotions    []TagCount     `json:"most_common_emotions"`
	MostCommonSymbols     []TagCount     `json:"most_common_symbols"`
	DreamTypeDistribution map[string]int `json:"dream_type_distribution"`
}

// TagCount is a value with its number of occurrences.
type TagCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DreamStore defines the interface for dream persistence.
type DreamStore interface {
	Create(ctx context.Context, dream *domain.Dream) error

	// GetByID returns ErrDreamNotFound if the dream does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dream, error)

	Update(ctx context.Context, dream *domain.Dream) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AnalysisStatus) error

	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the user's dreams ordered by dream date, newest first.
	List(ctx context.Context, userID uuid.UUID, filter DreamFilter) ([]*domain.Dream, error)

	// Search matches query against title and body text, case-insensitively.
	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*domain.Dream, error)

	// Since returns the user's dreams dated on or after from, newest first.
	Since(ctx context.Context, userID uuid.UUID, from time.Time) ([]*domain.Dream, error)

	// History returns up to limit of the user's dreams that have body text,
	// newest first.
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Dream, error)

	// Stats aggregates the user's journal relative to now.
	Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*DreamStats, error)

	// CountAnalysesSince counts the user's dreams recorded at or after since
	// whose analysis is processing or completed. A zero since counts all.
	CountAnalysesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)

	WithTx(tx *sql.Tx) DreamStore
}
