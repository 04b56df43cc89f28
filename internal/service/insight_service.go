package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/analysis"
	"github.com/dreamtracer/dreamtracer-api/internal/config"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/gemini"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

// insightWindow is how far back the daily insight looks.
const insightWindow = 7 * 24 * time.Hour

// Insight sources.
const (
	InsightSourceLLM       = "llm"
	InsightSourceHeuristic = "heuristic"
)

const (
	noDreamsInsight        = "최근 기록된 꿈이 없습니다. 꿈을 기록해보세요!"
	noDreamsPattern        = "데이터 부족"
	noDreamsRecommendation = "꿈을 꾸면 바로 기록해보세요."
	habitInsight           = "꿈을 꾸고 기록하는 습관이 좋습니다!"
	habitPattern           = "꿈 기록 습관"
	habitRecommendation    = "계속해서 꿈을 기록해보세요."
)

// InsightOracle writes a short insight about recent dreams.
type InsightOracle interface {
	DailyInsight(ctx context.Context, dreams []gemini.InsightDream) (string, error)
}

// DailyInsight is a short reflection on the last week of dreams.
type DailyInsight struct {
	Insight        string    `json:"insight"`
	Pattern        string    `json:"pattern"`
	Recommendation string    `json:"recommendation"`
	DreamCount     int       `json:"dream_count"`
	Source         string    `json:"source"`
	Date           time.Time `json:"date"`
}

// InsightService produces daily insights.
type InsightService interface {
	// DailyInsight summarizes the user's dreams of the last seven days. The
	// LLM oracle writes the insight when available; otherwise it comes from
	// the analysis pipeline.
	DailyInsight(ctx context.Context, userID uuid.UUID) (*DailyInsight, error)
}

type insightService struct {
	dreams         store.DreamStore
	users          store.UserStore
	oracle         InsightOracle
	system         *analysis.System
	defaultCulture string
	now            func() time.Time
	logger         *slog.Logger
}

// NewInsightService creates an InsightService. oracle may be nil.
func NewInsightService(
	dreams store.DreamStore,
	users store.UserStore,
	oracle InsightOracle,
	system *analysis.System,
	cfg config.AnalysisConfig,
	logger *slog.Logger,
) InsightService {
	if logger == nil {
		logger = slog.Default()
	}
	return &insightService{
		dreams:         dreams,
		users:          users,
		oracle:         oracle,
		system:         system,
		defaultCulture: cfg.DefaultCulture,
		now:            time.Now,
		logger:         logger.With("component", "insight_service"),
	}
}

func (s *insightService) DailyInsight(ctx context.Context, userID uuid.UUID) (*DailyInsight, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("user_id", userID)
	now := s.now()

	all, err := s.dreams.Since(ctx, userID, now.Add(-insightWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent dreams: %w", err)
	}
	var recent []*domain.Dream
	for _, d := range all {
		if d.BodyText != "" {
			recent = append(recent, d)
		}
	}

	today := domain.TruncateToDate(now)
	if len(recent) == 0 {
		return &DailyInsight{
			Insight:        noDreamsInsight,
			Pattern:        noDreamsPattern,
			Recommendation: noDreamsRecommendation,
			Source:         InsightSourceHeuristic,
			Date:           today,
		}, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// Dreams arrive newest first; the newest is analyzed against the rest.
	latest := recent[0]
	report := s.system.AnalyzeDream(ctx, latest.AnalysisText(), buildProfile(user, recent, latest.ID, s.defaultCulture))

	result := &DailyInsight{
		Insight:        habitInsight,
		Pattern:        recentPattern(recent),
		Recommendation: habitRecommendation,
		DreamCount:     len(recent),
		Source:         InsightSourceHeuristic,
		Date:           today,
	}
	if len(report.ComprehensiveInsights) > 0 {
		result.Insight = report.ComprehensiveInsights[0]
	}
	if len(report.Recommendations) > 0 {
		result.Recommendation = report.Recommendations[0]
	}

	if s.oracle == nil {
		return result, nil
	}

	text, err := s.oracle.DailyInsight(ctx, insightDreams(recent))
	switch {
	case err == nil:
		result.Insight = text
		result.Source = InsightSourceLLM
	case errors.Is(err, gemini.ErrContentBlocked):
		log.Warn("daily insight blocked by safety filters")
	case errors.Is(err, gemini.ErrQuotaExceeded):
		log.Warn("daily insight skipped, gemini quota exceeded")
	default:
		log.Error("failed to generate daily insight", "error", redact.Error(err))
	}
	return result, nil
}

func insightDreams(dreams []*domain.Dream) []gemini.InsightDream {
	out := make([]gemini.InsightDream, 0, len(dreams))
	for _, d := range dreams {
		out = append(out, gemini.InsightDream{
			Date:     d.DreamDate,
			Title:    d.Title,
			Body:     d.BodyText,
			Emotions: d.EmotionTags,
		})
	}
	return out
}

// recentPattern names the three most common emotions and symbols.
func recentPattern(dreams []*domain.Dream) string {
	var emotions, symbols []string
	for _, d := range dreams {
		emotions = append(emotions, d.EmotionTags...)
		symbols = append(symbols, d.Symbols...)
	}

	topEmotions := topCounts(emotions, 3)
	topSymbols := topCounts(symbols, 3)
	if len(topEmotions) == 0 && len(topSymbols) == 0 {
		return habitPattern
	}
	return fmt.Sprintf("주요 감정: %s / 주요 상징: %s", joinValues(topEmotions), joinValues(topSymbols))
}

func joinValues(counts []store.TagCount) string {
	if len(counts) == 0 {
		return "없음"
	}
	values := make([]string, len(counts))
	for i, c := range counts {
		values[i] = c.Value
	}
	return strings.Join(values, ", ")
}
