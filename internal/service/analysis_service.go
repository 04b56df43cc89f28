package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/analysis"
	"github.com/dreamtracer/dreamtracer-api/internal/config"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/events"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/similarity"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/dreamtracer/dreamtracer-api/internal/task"
	"github.com/google/uuid"
)

const (
	// DefaultPatternDays is the pattern period when none is given.
	DefaultPatternDays = 30
	MinPatternDays     = 7
	MaxPatternDays     = 365

	// maxNetworkDreams bounds the dreams embedded for one network.
	maxNetworkDreams = 100

	defaultEmotionalFlow = "감정 분석이 완료되었습니다."
)

// ModernAnalysis is the result of a synchronous analysis.
type ModernAnalysis struct {
	Message    string           `json:"message"`
	AnalysisID uuid.UUID        `json:"analysis_id"`
	Report     *analysis.Report `json:"modern_analysis"`
	Status     string           `json:"status"`
}

// TaskStatusView reports the progress of a background analysis.
type TaskStatusView struct {
	TaskID  uuid.UUID             `json:"task_id"`
	DreamID uuid.UUID             `json:"dream_id"`
	Status  task.TaskStatus       `json:"status"`
	Message string                `json:"message"`
	Error   string                `json:"error,omitempty"`
	Result  *domain.DreamAnalysis `json:"result,omitempty"`
}

var taskStatusMessages = map[task.TaskStatus]string{
	task.TaskStatusPending:    "태스크가 대기 중입니다",
	task.TaskStatusProcessing: "분석 중입니다",
	task.TaskStatusCompleted:  "분석이 완료되었습니다",
	task.TaskStatusFailed:     "분석에 실패했습니다",
}

// DreamPatterns aggregates tags over a period.
type DreamPatterns struct {
	Emotions        []store.TagCount `json:"emotions"`
	Symbols         []store.TagCount `json:"symbols"`
	Characters      []store.TagCount `json:"characters"`
	DreamTypes      []store.TagCount `json:"dream_types"`
	AverageLucidity float64          `json:"average_lucidity"`
}

// PatternSummary is the result of pattern analysis. Patterns is nil and
// Message is set when the period has no dreams.
type PatternSummary struct {
	AnalysisPeriod string         `json:"analysis_period"`
	Days           int            `json:"days"`
	TotalDreams    int            `json:"total_dreams"`
	Patterns       *DreamPatterns `json:"patterns"`
	Message        string         `json:"message,omitempty"`
}

// NetworkResult is the dream similarity network of a user.
type NetworkResult struct {
	similarity.Network
	Message string `json:"message,omitempty"`
}

// AnalysisService runs and serves dream analyses.
type AnalysisService interface {
	task.DreamProcessor

	// RequestAnalysis marks the dream processing and queues a background
	// analysis, returning the task id.
	RequestAnalysis(ctx context.Context, userID, dreamID uuid.UUID) (uuid.UUID, error)

	// AnalyzeNow analyzes the dream synchronously.
	AnalyzeNow(ctx context.Context, userID, dreamID uuid.UUID) (*ModernAnalysis, error)

	GetTaskStatus(ctx context.Context, userID, taskID uuid.UUID) (*TaskStatusView, error)

	// GetAnalysis returns store.ErrAnalysisNotFound if the dream has not been
	// analyzed.
	GetAnalysis(ctx context.Context, userID, dreamID uuid.UUID) (*domain.DreamAnalysis, error)

	// Patterns aggregates the user's dreams of the last days days. Zero
	// days means DefaultPatternDays.
	Patterns(ctx context.Context, userID uuid.UUID, days int) (*PatternSummary, error)

	Network(ctx context.Context, userID uuid.UUID) (*NetworkResult, error)
}

// AnalysisServiceDeps are the collaborators of the analysis service.
type AnalysisServiceDeps struct {
	DB         *sql.DB
	Dreams     store.DreamStore
	Analyses   store.AnalysisStore
	Users      store.UserStore
	Tasks      task.TaskStore
	Emitter    events.EventEmitter
	Usage      UsageChecker
	System     *analysis.System
	Similarity *similarity.NetworkBuilder
}

type analysisService struct {
	AnalysisServiceDeps
	historyLimit   int
	defaultCulture string
	now            func() time.Time
	logger         *slog.Logger
}

// NewAnalysisService creates an AnalysisService. It returns an error if a
// required dependency is missing.
func NewAnalysisService(
	deps AnalysisServiceDeps,
	cfg config.AnalysisConfig,
	logger *slog.Logger,
) (AnalysisService, error) {
	switch {
	case deps.DB == nil:
		return nil, errors.New("analysis service requires a database")
	case deps.Dreams == nil, deps.Analyses == nil, deps.Users == nil, deps.Tasks == nil:
		return nil, errors.New("analysis service requires dream, analysis, user and task stores")
	case deps.Emitter == nil:
		return nil, errors.New("analysis service requires an event emitter")
	case deps.Usage == nil:
		return nil, errors.New("analysis service requires a usage checker")
	case deps.System == nil:
		return nil, errors.New("analysis service requires an analysis system")
	}
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = 50
	}
	return &analysisService{
		AnalysisServiceDeps: deps,
		historyLimit:        limit,
		defaultCulture:      cfg.DefaultCulture,
		now:                 time.Now,
		logger:              logger.With("component", "analysis_service"),
	}, nil
}

func (s *analysisService) checkUsage(ctx context.Context, userID uuid.UUID) error {
	check, err := s.Usage.CheckUsage(ctx, userID)
	if err != nil {
		return err
	}
	if !check.CanAnalyze {
		return ErrUsageLimitExceeded
	}
	return nil
}

func (s *analysisService) RequestAnalysis(ctx context.Context, userID, dreamID uuid.UUID) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("dream_id", dreamID)

	dream, err := ownedDream(ctx, s.Dreams, userID, dreamID)
	if err != nil {
		return uuid.Nil, err
	}
	switch dream.AnalysisStatus {
	case domain.AnalysisStatusProcessing:
		return uuid.Nil, ErrAnalysisInProgress
	case domain.AnalysisStatusCompleted:
		return uuid.Nil, ErrAnalysisCompleted
	}
	if err := s.checkUsage(ctx, userID); err != nil {
		return uuid.Nil, err
	}

	previous := dream.AnalysisStatus
	if err := s.Dreams.UpdateStatus(ctx, dreamID, domain.AnalysisStatusProcessing); err != nil {
		log.Error("failed to mark dream processing", "error", redact.Error(err))
		return uuid.Nil, NewServiceError("request_analysis", "failed to update dream status", err)
	}

	taskID := uuid.New()
	event, err := events.NewTaskRequestEvent(task.TaskTypeDreamAnalysis, task.AnalysisRequestPayload{
		TaskID:  taskID,
		DreamID: dreamID,
	})
	if err == nil {
		err = s.Emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Error("failed to queue dream analysis", "error", redact.Error(err))
		if revertErr := s.Dreams.UpdateStatus(context.WithoutCancel(ctx), dreamID, previous); revertErr != nil {
			log.Error("failed to restore dream status", "error", redact.Error(revertErr))
		}
		return uuid.Nil, NewServiceError("request_analysis", "failed to queue analysis", err)
	}

	log.Info("dream analysis requested", "task_id", taskID)
	return taskID, nil
}

// ProcessDream implements task.DreamProcessor.
func (s *analysisService) ProcessDream(ctx context.Context, dreamID uuid.UUID) error {
	dream, err := s.Dreams.GetByID(ctx, dreamID)
	if err != nil {
		return fmt.Errorf("failed to load dream: %w", err)
	}
	_, _, err = s.analyze(ctx, dream)
	return err
}

// MarkFailed implements task.DreamProcessor.
func (s *analysisService) MarkFailed(ctx context.Context, dreamID uuid.UUID) error {
	if err := s.Dreams.UpdateStatus(ctx, dreamID, domain.AnalysisStatusFailed); err != nil {
		return fmt.Errorf("failed to mark dream failed: %w", err)
	}
	return nil
}

func (s *analysisService) AnalyzeNow(ctx context.Context, userID, dreamID uuid.UUID) (*ModernAnalysis, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("dream_id", dreamID)

	dream, err := ownedDream(ctx, s.Dreams, userID, dreamID)
	if err != nil {
		return nil, err
	}
	if dream.AnalysisStatus == domain.AnalysisStatusProcessing {
		return nil, ErrAnalysisInProgress
	}
	if err := s.checkUsage(ctx, userID); err != nil {
		return nil, err
	}

	record, report, err := s.analyze(ctx, dream)
	if err != nil {
		if markErr := s.MarkFailed(context.WithoutCancel(ctx), dreamID); markErr != nil {
			log.Error("failed to mark dream analysis as failed", "error", redact.Error(markErr))
		}
		return nil, err
	}

	return &ModernAnalysis{
		Message:    "현대적 꿈 분석이 완료되었습니다",
		AnalysisID: record.ID,
		Report:     report,
		Status:     string(domain.AnalysisStatusCompleted),
	}, nil
}

// analyze runs the pipeline for dream and stores the analysis together with
// the completed status.
func (s *analysisService) analyze(
	ctx context.Context,
	dream *domain.Dream,
) (*domain.DreamAnalysis, *analysis.Report, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("dream_id", dream.ID)
	log.Info("starting dream analysis")

	user, err := s.Users.GetByID(ctx, dream.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dream owner: %w", err)
	}
	history, err := s.Dreams.History(ctx, dream.UserID, s.historyLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dream history: %w", err)
	}

	profile := buildProfile(user, history, dream.ID, s.defaultCulture)
	report := s.System.AnalyzeDream(ctx, dream.AnalysisText(), profile)

	record, err := analysisRecord(dream.ID, report)
	if err != nil {
		return nil, nil, NewServiceError("analyze_dream", "failed to encode analysis", err)
	}

	err = store.RunInTransaction(ctx, s.DB, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.Analyses.WithTx(tx).Upsert(ctx, record); err != nil {
			return err
		}
		return s.Dreams.WithTx(tx).UpdateStatus(ctx, dream.ID, domain.AnalysisStatusCompleted)
	})
	if err != nil {
		log.Error("failed to save dream analysis", "error", redact.Error(err))
		return nil, nil, NewServiceError("analyze_dream", "failed to save analysis", err)
	}

	log.Info("dream analysis completed", "analysis_id", record.ID)
	return record, report, nil
}

// analysisRecord maps a pipeline report onto the stored analysis.
func analysisRecord(dreamID uuid.UUID, report *analysis.Report) (*domain.DreamAnalysis, error) {
	rec := domain.NewDreamAnalysis(dreamID)
	if len(report.ComprehensiveInsights) > 0 {
		rec.SummaryText = report.ComprehensiveInsights[0]
	}
	if c := report.Cognitive(); c != nil && c.CognitiveFunctions != nil {
		rec.Keywords = c.CognitiveFunctions
	}
	rec.EmotionalFlowText = defaultEmotionalFlow
	if e := report.Emotional(); e != nil && len(e.Insights()) > 0 {
		rec.EmotionalFlowText = e.Insights()[0]
	}
	if len(report.Recommendations) > 0 {
		rec.ReflectiveQuestion = report.Recommendations[0]
	}

	var err error
	if rec.SymbolAnalysis, err = json.Marshal(report.Analyses[analysis.NameSymbolic]); err != nil {
		return nil, err
	}
	if rec.DejaVuAnalysis, err = json.Marshal(report.Analyses[analysis.NamePattern]); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *analysisService) GetTaskStatus(ctx context.Context, userID, taskID uuid.UUID) (*TaskStatusView, error) {
	rec, err := s.Tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var payload task.DreamAnalysisPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return nil, NewServiceError("get_task_status", "invalid task payload", err)
	}
	if _, err := ownedDream(ctx, s.Dreams, userID, payload.DreamID); err != nil {
		return nil, err
	}

	view := &TaskStatusView{
		TaskID:  rec.ID,
		DreamID: payload.DreamID,
		Status:  rec.Status,
		Message: taskStatusMessages[rec.Status],
		Error:   rec.ErrorMessage,
	}
	if rec.Status == task.TaskStatusCompleted {
		result, err := s.Analyses.GetByDreamID(ctx, payload.DreamID)
		if err != nil && !errors.Is(err, store.ErrAnalysisNotFound) {
			return nil, fmt.Errorf("failed to load analysis result: %w", err)
		}
		view.Result = result
	}
	return view, nil
}

func (s *analysisService) GetAnalysis(ctx context.Context, userID, dreamID uuid.UUID) (*domain.DreamAnalysis, error) {
	if _, err := ownedDream(ctx, s.Dreams, userID, dreamID); err != nil {
		return nil, err
	}
	return s.Analyses.GetByDreamID(ctx, dreamID)
}

func (s *analysisService) Patterns(ctx context.Context, userID uuid.UUID, days int) (*PatternSummary, error) {
	if days == 0 {
		days = DefaultPatternDays
	}
	if days < MinPatternDays || days > MaxPatternDays {
		return nil, ErrInvalidPeriod
	}

	dreams, err := s.Dreams.Since(ctx, userID, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("failed to load dreams: %w", err)
	}

	summary := &PatternSummary{AnalysisPeriod: strconv.Itoa(days) + "일", Days: days}

	var emotions, symbols, characters, types []string
	var luciditySum, lucidityCount int
	for _, d := range dreams {
		if d.BodyText == "" {
			continue
		}
		summary.TotalDreams++
		emotions = append(emotions, d.EmotionTags...)
		symbols = append(symbols, d.Symbols...)
		characters = append(characters, d.Characters...)
		if d.DreamType != "" {
			types = append(types, string(d.DreamType))
		}
		if d.LucidityLevel != nil {
			luciditySum += *d.LucidityLevel
			lucidityCount++
		}
	}

	if summary.TotalDreams == 0 {
		summary.Message = "분석할 꿈 데이터가 없습니다"
		return summary, nil
	}

	patterns := &DreamPatterns{
		Emotions:   topCounts(emotions, 5),
		Symbols:    topCounts(symbols, 5),
		Characters: topCounts(characters, 5),
		DreamTypes: topCounts(types, 0),
	}
	if lucidityCount > 0 {
		avg := float64(luciditySum) / float64(lucidityCount)
		patterns.AverageLucidity = math.Round(avg*100) / 100
	}
	summary.Patterns = patterns
	return summary, nil
}

func (s *analysisService) Network(ctx context.Context, userID uuid.UUID) (*NetworkResult, error) {
	if s.Similarity == nil {
		return nil, errors.New("dream network is not configured")
	}

	dreams, err := s.Dreams.History(ctx, userID, maxNetworkDreams)
	if err != nil {
		return nil, fmt.Errorf("failed to load dreams: %w", err)
	}

	nodes := make([]similarity.Dream, 0, len(dreams))
	for _, d := range dreams {
		nodes = append(nodes, similarity.Dream{
			ID:        d.ID,
			Title:     d.Title,
			Body:      d.BodyText,
			DreamDate: d.DreamDate,
		})
	}

	network, err := s.Similarity.Build(ctx, nodes)
	if errors.Is(err, similarity.ErrNotEnoughDreams) {
		return &NetworkResult{
			Network: similarity.Network{Connections: []similarity.Connection{}},
			Message: "네트워크 분석을 위해서는 최소 2개의 꿈이 필요합니다",
		}, nil
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to build dream network",
			"error", redact.Error(err),
			"user_id", userID)
		return nil, NewServiceError("dream_network", "failed to build network", err)
	}
	return &NetworkResult{Network: *network}, nil
}
