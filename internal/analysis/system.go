package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"golang.org/x/sync/errgroup"
)

// ReportVersion is stamped into every report's metadata.
const ReportVersion = "1.0"

const (
	maxComprehensiveInsights = 5
	insightsPerAnalyzer      = 2
	maxRecommendations       = 3
)

var (
	anxietyRecommendations = []string{
		"불안감이 높을 때는 명상이나 깊은 호흡을 시도해보세요",
		"규칙적인 운동이 스트레스 해소에 도움이 될 수 있습니다",
	}
	decliningRecommendation = "최근 감정적 톤이 부정적으로 변하고 있습니다. 전문가 상담을 고려해보세요"
	waterRecommendation     = "물과 관련된 꿈은 감정의 정화를 의미할 수 있습니다. 감정을 표현하는 시간을 가져보세요"
	fallbackRecommendations = []string{
		"꿈을 더 자세히 기록해보세요. 패턴 분석에 도움이 됩니다",
		"규칙적인 수면 패턴을 유지해보세요",
	}
)

// Metadata describes how a report was produced.
type Metadata struct {
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	AnalyzerCount int       `json:"analyzer_count"`
}

// Report is the merged output of one pipeline run.
type Report struct {
	Analyses              map[string]Result  `json:"analyses"`
	Confidence            map[string]float64 `json:"confidence"`
	ComprehensiveInsights []string           `json:"comprehensive_insights"`
	Recommendations       []string           `json:"recommendations"`
	Metadata              Metadata           `json:"metadata"`
}

// Cognitive returns the cognitive result, or nil if it has another type.
func (r *Report) Cognitive() *CognitiveResult {
	c, _ := r.Analyses[NameCognitive].(*CognitiveResult)
	return c
}

// Emotional returns the emotional result, or nil if it has another type.
func (r *Report) Emotional() *EmotionalResult {
	e, _ := r.Analyses[NameEmotional].(*EmotionalResult)
	return e
}

// Pattern returns the pattern result, or nil if it has another type.
func (r *Report) Pattern() *PatternResult {
	p, _ := r.Analyses[NamePattern].(*PatternResult)
	return p
}

// Symbolic returns the symbolic result, or nil if it has another type.
func (r *Report) Symbolic() *SymbolicResult {
	s, _ := r.Analyses[NameSymbolic].(*SymbolicResult)
	return s
}

// Recorder receives per-analyzer timing. status is "ok", "error" or "panic".
type Recorder interface {
	ObserveAnalyzer(name, status string, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveAnalyzer(string, string, time.Duration) {}

// Option configures a System.
type Option func(*System)

// WithAnalyzer replaces the registered analyzer with the same name.
// Analyzers whose name is not registered are ignored.
func WithAnalyzer(a Analyzer) Option {
	return func(s *System) {
		for i, existing := range s.analyzers {
			if existing.Name() == a.Name() {
				s.analyzers[i] = a
				return
			}
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *slog.Logger) Option {
	return func(s *System) { s.logger = l }
}

// WithRecorder sets the analyzer timing recorder.
func WithRecorder(r Recorder) Option {
	return func(s *System) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithConcurrency runs the analyzers in parallel when enabled.
func WithConcurrency(enabled bool) Option {
	return func(s *System) { s.concurrent = enabled }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *System) { s.now = now }
}

// System runs the analyzers and merges their results. It holds no per-call
// state and is safe for concurrent use.
type System struct {
	analyzers    []Analyzer
	personalizer *PersonalizationEngine
	evaluator    *ConfidenceEvaluator
	logger       *slog.Logger
	recorder     Recorder
	concurrent   bool
	now          func() time.Time
}

// NewSystem creates a System with the four built-in analyzers registered in
// cognitive, emotional, pattern, symbolic order.
func NewSystem(opts ...Option) *System {
	s := &System{
		analyzers: []Analyzer{
			NewCognitiveAnalyzer(),
			NewEmotionalAnalyzer(),
			NewPatternAnalyzer(),
			NewSymbolicAnalyzer(),
		},
		personalizer: NewPersonalizationEngine(),
		evaluator:    NewConfidenceEvaluator(),
		logger:       slog.Default(),
		recorder:     noopRecorder{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeDream runs the full pipeline. It always returns a complete report:
// a failing analyzer is replaced by its default stub.
func (s *System) AnalyzeDream(ctx context.Context, text string, profile UserProfile) *Report {
	timestamp := s.now()
	raw := s.runAnalyzers(ctx, text, profile)

	personalized := s.personalizer.Apply(raw, profile)
	confidence := s.evaluator.Evaluate(personalized, profile)

	return &Report{
		Analyses:              personalized,
		Confidence:            confidence,
		ComprehensiveInsights: s.comprehensiveInsights(personalized),
		Recommendations:       recommendations(personalized),
		Metadata: Metadata{
			Timestamp:     timestamp,
			Version:       ReportVersion,
			AnalyzerCount: len(s.analyzers),
		},
	}
}

func (s *System) runAnalyzers(ctx context.Context, text string, profile UserProfile) map[string]Result {
	results := make([]Result, len(s.analyzers))
	if s.concurrent {
		var g errgroup.Group
		for i, a := range s.analyzers {
			g.Go(func() error {
				results[i] = s.runOne(ctx, a, text, profile)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, a := range s.analyzers {
			results[i] = s.runOne(ctx, a, text, profile)
		}
	}

	out := make(map[string]Result, len(results))
	for i, a := range s.analyzers {
		out[a.Name()] = results[i]
	}
	return out
}

func (s *System) runOne(ctx context.Context, a Analyzer, text string, profile UserProfile) (result Result) {
	name := a.Name()
	start := time.Now()
	status := "ok"
	log := logger.FromContextOrDefault(ctx, s.logger)

	defer func() {
		if r := recover(); r != nil {
			status = "panic"
			log.WarnContext(ctx, "analyzer panicked, using default result",
				slog.String("analyzer", name),
				slog.String("panic", fmt.Sprint(r)))
			result = DefaultResult(name)
		}
		s.recorder.ObserveAnalyzer(name, status, time.Since(start))
	}()

	res, err := a.Analyze(ctx, text, profile)
	if err == nil && isNilResult(res) {
		err = fmt.Errorf("analyzer %s returned no result", name)
	}
	if err != nil {
		status = "error"
		log.WarnContext(ctx, "analyzer failed, using default result",
			slog.String("analyzer", name),
			slog.Any("error", err))
		return DefaultResult(name)
	}
	return res
}

// isNilResult also catches a typed nil pointer wrapped in the interface.
func isNilResult(res Result) bool {
	if res == nil {
		return true
	}
	v := reflect.ValueOf(res)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func (s *System) comprehensiveInsights(results map[string]Result) []string {
	insights := []string{}
	for _, a := range s.analyzers {
		result := results[a.Name()]
		if result == nil {
			continue
		}
		for _, insight := range firstN(result.Insights(), insightsPerAnalyzer) {
			insights = appendUnique(insights, insight)
		}
	}
	return firstN(insights, maxComprehensiveInsights)
}

func recommendations(results map[string]Result) []string {
	var recs []string

	if e, ok := results[NameEmotional].(*EmotionalResult); ok && e.PrimaryEmotion == EmotionAnxiety {
		recs = append(recs, anxietyRecommendations...)
	}
	if p, ok := results[NamePattern].(*PatternResult); ok && p.Sufficient() &&
		p.ChangePatterns != nil && p.ChangePatterns.EmotionTrend == TrendDeclining {
		recs = append(recs, decliningRecommendation)
	}
	if sym, ok := results[NameSymbolic].(*SymbolicResult); ok {
		for _, found := range sym.SymbolsFound {
			if found == SymbolWater {
				recs = append(recs, waterRecommendation)
				break
			}
		}
	}
	if len(recs) == 0 {
		recs = append(recs, fallbackRecommendations...)
	}
	return firstN(recs, maxRecommendations)
}
