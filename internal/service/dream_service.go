package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

// DreamInput holds the fields of a new dream.
type DreamInput struct {
	DreamDate     time.Time
	Title         string
	BodyText      string
	LucidityLevel *int
	EmotionTags   []string
	DreamType     domain.DreamType
	SleepQuality  *int
	DreamDuration *int
	Location      string
	Characters    []string
	Symbols       []string
	IsShared      bool
}

// DreamUpdate holds the fields to change on a dream. Nil fields are kept.
type DreamUpdate struct {
	DreamDate     *time.Time
	Title         *string
	BodyText      *string
	LucidityLevel *int
	EmotionTags   []string
	DreamType     *domain.DreamType
	SleepQuality  *int
	DreamDuration *int
	Location      *string
	Characters    []string
	Symbols       []string
	IsShared      *bool
}

// DreamService manages a user's dream journal.
type DreamService interface {
	CreateDream(ctx context.Context, userID uuid.UUID, in DreamInput) (*domain.Dream, error)

	// GetDream returns ErrNotOwned when the dream belongs to another user.
	GetDream(ctx context.Context, userID, dreamID uuid.UUID) (*domain.Dream, error)

	ListDreams(ctx context.Context, userID uuid.UUID, filter store.DreamFilter) ([]*domain.Dream, error)

	UpdateDream(ctx context.Context, userID, dreamID uuid.UUID, upd DreamUpdate) (*domain.Dream, error)

	DeleteDream(ctx context.Context, userID, dreamID uuid.UUID) error

	SearchDreams(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*domain.Dream, error)

	Stats(ctx context.Context, userID uuid.UUID) (*store.DreamStats, error)
}

type dreamService struct {
	dreams store.DreamStore
	now    func() time.Time
	logger *slog.Logger
}

// NewDreamService creates a DreamService.
func NewDreamService(dreams store.DreamStore, logger *slog.Logger) DreamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &dreamService{
		dreams: dreams,
		now:    time.Now,
		logger: logger.With("component", "dream_service"),
	}
}

// ownedDream loads a dream and checks that userID owns it.
func ownedDream(ctx context.Context, dreams store.DreamStore, userID, dreamID uuid.UUID) (*domain.Dream, error) {
	dream, err := dreams.GetByID(ctx, dreamID)
	if err != nil {
		return nil, err
	}
	if dream.UserID != userID {
		return nil, ErrNotOwned
	}
	return dream, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *dreamService) CreateDream(ctx context.Context, userID uuid.UUID, in DreamInput) (*domain.Dream, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	date := in.DreamDate
	if date.IsZero() {
		date = s.now()
	}
	dream := domain.NewDream(userID, date)
	dream.Title = in.Title
	dream.BodyText = in.BodyText
	dream.LucidityLevel = in.LucidityLevel
	dream.EmotionTags = nonNilStrings(in.EmotionTags)
	dream.DreamType = in.DreamType
	dream.SleepQuality = in.SleepQuality
	dream.DreamDuration = in.DreamDuration
	dream.Location = in.Location
	dream.Characters = nonNilStrings(in.Characters)
	dream.Symbols = nonNilStrings(in.Symbols)
	dream.IsShared = in.IsShared

	if err := dream.Validate(); err != nil {
		return nil, err
	}
	if err := s.dreams.Create(ctx, dream); err != nil {
		log.Error("failed to create dream", "error", redact.Error(err), "user_id", userID)
		return nil, NewServiceError("create_dream", "failed to save dream", err)
	}

	log.Info("dream created", "dream_id", dream.ID, "user_id", userID)
	return dream, nil
}

func (s *dreamService) GetDream(ctx context.Context, userID, dreamID uuid.UUID) (*domain.Dream, error) {
	return ownedDream(ctx, s.dreams, userID, dreamID)
}

func (s *dreamService) ListDreams(
	ctx context.Context,
	userID uuid.UUID,
	filter store.DreamFilter,
) ([]*domain.Dream, error) {
	if filter.DreamType != "" && !domain.IsValidDreamType(filter.DreamType) {
		return nil, domain.ErrInvalidDreamType
	}
	dreams, err := s.dreams.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list dreams: %w", err)
	}
	return dreams, nil
}

func (s *dreamService) UpdateDream(
	ctx context.Context,
	userID, dreamID uuid.UUID,
	upd DreamUpdate,
) (*domain.Dream, error) {
	dream, err := ownedDream(ctx, s.dreams, userID, dreamID)
	if err != nil {
		return nil, err
	}

	applyDreamUpdate(dream, upd)
	dream.UpdatedAt = s.now().UTC()
	if err := dream.Validate(); err != nil {
		return nil, err
	}

	if err := s.dreams.Update(ctx, dream); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update dream",
			"error", redact.Error(err),
			"dream_id", dreamID)
		return nil, NewServiceError("update_dream", "failed to save dream", err)
	}
	return dream, nil
}

func applyDreamUpdate(d *domain.Dream, upd DreamUpdate) {
	if upd.DreamDate != nil {
		d.DreamDate = domain.TruncateToDate(*upd.DreamDate)
	}
	if upd.Title != nil {
		d.Title = *upd.Title
	}
	if upd.BodyText != nil {
		d.BodyText = *upd.BodyText
	}
	if upd.LucidityLevel != nil {
		d.LucidityLevel = upd.LucidityLevel
	}
	if upd.EmotionTags != nil {
		d.EmotionTags = upd.EmotionTags
	}
	if upd.DreamType != nil {
		d.DreamType = *upd.DreamType
	}
	if upd.SleepQuality != nil {
		d.SleepQuality = upd.SleepQuality
	}
	if upd.DreamDuration != nil {
		d.DreamDuration = upd.DreamDuration
	}
	if upd.Location != nil {
		d.Location = *upd.Location
	}
	if upd.Characters != nil {
		d.Characters = upd.Characters
	}
	if upd.Symbols != nil {
		d.Symbols = upd.Symbols
	}
	if upd.IsShared != nil {
		d.IsShared = *upd.IsShared
	}
}

func (s *dreamService) DeleteDream(ctx context.Context, userID, dreamID uuid.UUID) error {
	if _, err := ownedDream(ctx, s.dreams, userID, dreamID); err != nil {
		return err
	}
	if err := s.dreams.Delete(ctx, dreamID); err != nil {
		return fmt.Errorf("failed to delete dream: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("dream deleted", "dream_id", dreamID)
	return nil
}

func (s *dreamService) SearchDreams(
	ctx context.Context,
	userID uuid.UUID,
	query string,
	limit int,
) ([]*domain.Dream, error) {
	dreams, err := s.dreams.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search dreams: %w", err)
	}
	return dreams, nil
}

func (s *dreamService) Stats(ctx context.Context, userID uuid.UUID) (*store.DreamStats, error) {
	stats, err := s.dreams.Stats(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute dream stats: %w", err)
	}
	return stats, nil
}
