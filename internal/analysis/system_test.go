package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestSystem(opts ...Option) *System {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedTime }),
	}
	return NewSystem(append(base, opts...)...)
}

type failingAnalyzer struct {
	name  string
	panic bool
}

func (f failingAnalyzer) Name() string { return f.name }

func (f failingAnalyzer) Analyze(context.Context, string, UserProfile) (Result, error) {
	if f.panic {
		panic("boom")
	}
	return nil, errors.New("analyzer exploded")
}

type typedNilAnalyzer struct{ name string }

func (n typedNilAnalyzer) Name() string { return n.name }

func (n typedNilAnalyzer) Analyze(context.Context, string, UserProfile) (Result, error) {
	return (*CognitiveResult)(nil), nil
}

type recordingRecorder struct {
	mu       sync.Mutex
	statuses map[string]string
}

func (r *recordingRecorder) ObserveAnalyzer(name, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[name] = status
}

func assertReportShape(t *testing.T, report *Report) {
	t.Helper()
	require.NotNil(t, report)
	assert.ElementsMatch(t, RegistryOrder, keys(report.Analyses))
	assert.ElementsMatch(t, RegistryOrder, keys(report.Confidence))
	assert.LessOrEqual(t, len(report.ComprehensiveInsights), 5)
	assert.LessOrEqual(t, len(report.Recommendations), 3)

	seen := map[string]bool{}
	for _, insight := range report.ComprehensiveInsights {
		assert.False(t, seen[insight], "duplicate insight %q", insight)
		seen[insight] = true
	}
	for name, c := range report.Confidence {
		assert.GreaterOrEqual(t, c, 0.1, name)
		assert.LessOrEqual(t, c, 0.95, name)
	}
	assert.Equal(t, ReportVersion, report.Metadata.Version)
	assert.Equal(t, 4, report.Metadata.AnalyzerCount)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestSystem_ReportShape(t *testing.T) {
	texts := []string{
		"",
		"   ",
		"나는 물에서 수영하는 꿈을 꿨다",
		"정말 불안하고 무서워서 집 문을 잠그고 차를 타다 비행기를 봤다",
		"고요한 바다와 꽃이 핀 산에서 과거의 친구를 만나 새로운 계획을 세웠다",
	}
	profiles := []UserProfile{
		{},
		{CulturalBackground: CultureWestern, DreamHistory: historyOf("물", "집", "길")},
		{Preferences: Preferences{PreferredAnalysisType: PreferencePsychological}, DreamHistory: make([]HistoryEntry, 25)},
	}

	s := newTestSystem()
	for _, text := range texts {
		for _, profile := range profiles {
			assertReportShape(t, s.AnalyzeDream(context.Background(), text, profile))
		}
	}
}

func TestSystem_WaterDreamWithShortHistory(t *testing.T) {
	report := newTestSystem().AnalyzeDream(context.Background(), "나는 물에서 수영하는 꿈을 꿨다", UserProfile{})

	require.NotNil(t, report.Pattern())
	assert.Equal(t, StatusInsufficientData, report.Pattern().Status)
	assert.Contains(t, report.Symbolic().SymbolsFound, SymbolWater)
	assert.Equal(t, []string{waterRecommendation}, report.Recommendations)
	assert.InDelta(t, 0.1, report.Confidence[NamePattern], 1e-9)
}

func TestSystem_AnxietyRecommendations(t *testing.T) {
	report := newTestSystem().AnalyzeDream(context.Background(), "시험 때문에 불안했다", UserProfile{})

	assert.Equal(t, EmotionAnxiety, report.Emotional().PrimaryEmotion)
	require.GreaterOrEqual(t, len(report.Recommendations), 2)
	assert.Equal(t, anxietyRecommendations, report.Recommendations[:2])
}

func TestSystem_EmptyText(t *testing.T) {
	report := newTestSystem().AnalyzeDream(context.Background(), "", UserProfile{})

	cog := report.Cognitive()
	require.NotNil(t, cog)
	assert.Equal(t, ProcessingUnknown, cog.ProcessingType)
	assert.InDelta(t, 0.5, cog.Confidence(), 1e-9)
	assert.Equal(t, fallbackRecommendations, report.Recommendations)
	assertReportShape(t, report)
}

func TestSystem_AnalyzerFailureIsolated(t *testing.T) {
	for _, panics := range []bool{false, true} {
		for _, name := range RegistryOrder {
			t.Run(name, func(t *testing.T) {
				recorder := &recordingRecorder{statuses: map[string]string{}}
				s := newTestSystem(
					WithAnalyzer(failingAnalyzer{name: name, panic: panics}),
					WithRecorder(recorder),
				)

				var report *Report
				require.NotPanics(t, func() {
					report = s.AnalyzeDream(context.Background(), "불안한 물", UserProfile{CulturalBackground: CultureWestern})
				})

				assertReportShape(t, report)
				assert.Equal(t, DefaultResult(name), report.Analyses[name])
				if panics {
					assert.Equal(t, "panic", recorder.statuses[name])
				} else {
					assert.Equal(t, "error", recorder.statuses[name])
				}
			})
		}
	}
}

func TestSystem_TypedNilResultFallsBack(t *testing.T) {
	recorder := &recordingRecorder{statuses: map[string]string{}}
	s := newTestSystem(
		WithAnalyzer(typedNilAnalyzer{name: NameCognitive}),
		WithRecorder(recorder),
	)

	var report *Report
	require.NotPanics(t, func() {
		report = s.AnalyzeDream(context.Background(), "불안한 물", UserProfile{CulturalBackground: CultureKorean})
	})

	assertReportShape(t, report)
	assert.Equal(t, DefaultResult(NameCognitive), report.Analyses[NameCognitive])
	assert.Equal(t, "error", recorder.statuses[NameCognitive])
}

func TestSystem_TotalFailure(t *testing.T) {
	opts := []Option{}
	for _, name := range RegistryOrder {
		opts = append(opts, WithAnalyzer(failingAnalyzer{name: name}))
	}
	report := newTestSystem(opts...).AnalyzeDream(context.Background(), "불안", UserProfile{})

	assertReportShape(t, report)
	assert.Equal(t, []string{
		"인지적 분석을 위해 더 많은 정보가 필요합니다",
		"감정적 분석을 위해 더 많은 정보가 필요합니다",
		"패턴 분석을 위해 더 많은 꿈 기록이 필요합니다",
		"상징적 분석을 위해 더 많은 정보가 필요합니다",
	}, report.ComprehensiveInsights)
	assert.Equal(t, fallbackRecommendations, report.Recommendations)
}

func TestSystem_BoundaryHistoryOfThree(t *testing.T) {
	report := newTestSystem().AnalyzeDream(context.Background(), "집에서 물을 마셨다",
		UserProfile{DreamHistory: historyOf("어릴 적 집", "물가", "학교")})

	p := report.Pattern()
	require.NotNil(t, p)
	assert.True(t, p.Sufficient())
	assert.NotNil(t, p.RecurringElements)
	assert.NotNil(t, p.CurrentFeatures)
	require.NotNil(t, p.ChangePatterns)
	assert.Equal(t, StatusInsufficientData, p.ChangePatterns.Status)
}

func TestSystem_RecommendationsTruncatedInRuleOrder(t *testing.T) {
	profile := UserProfile{DreamHistory: taggedHistory([]string{"happy"}, []string{"sad"}, 5, 5)}
	report := newTestSystem().AnalyzeDream(context.Background(), "불안한 물", profile)

	assert.Equal(t, TrendDeclining, report.Pattern().ChangePatterns.EmotionTrend)
	assert.Equal(t, []string{anxietyRecommendations[0], anxietyRecommendations[1], decliningRecommendation},
		report.Recommendations)
}

func TestSystem_ComprehensiveInsightsOrderAndLimit(t *testing.T) {
	text := "정말 불안한 과거, 비행기와 집과 차"
	report := newTestSystem().AnalyzeDream(context.Background(), text, UserProfile{CulturalBackground: CultureWestern})

	assert.Equal(t, []string{
		"과거 경험을 정리하고 통합하는 과정으로 보입니다",
		"불안감이 꿈에 반영되어 있습니다. 현실의 스트레스나 걱정이 영향을 미치고 있을 수 있습니다",
		"감정의 강도가 높게 나타나고 있어, 이 감정이 현재 중요한 의미를 가지고 있을 수 있습니다",
		"'flying' 상징은 자유, 해방을 의미할 수 있습니다",
		"'water' 상징은 감정, 무의식을 의미할 수 있습니다",
	}, report.ComprehensiveInsights)
}

func TestSystem_PersonalizedInsightsFeedReport(t *testing.T) {
	profile := UserProfile{Preferences: Preferences{PreferredAnalysisType: PreferencePractical}}
	report := newTestSystem().AnalyzeDream(context.Background(), "", profile)

	require.NotEmpty(t, report.ComprehensiveInsights)
	for _, insight := range report.ComprehensiveInsights {
		assert.Contains(t, insight, "(실용적 관점에서)")
	}
}

func TestSystem_Idempotent(t *testing.T) {
	profile := UserProfile{DreamHistory: taggedHistory([]string{"happy"}, []string{"sad"}, 6, 5)}
	text := "정말 불안한 바다 위 비행"

	for _, concurrent := range []bool{false, true} {
		s := newTestSystem(WithConcurrency(concurrent))
		first := s.AnalyzeDream(context.Background(), text, profile)
		second := s.AnalyzeDream(context.Background(), text, profile)
		assert.Equal(t, first, second)
	}

	sequential := newTestSystem().AnalyzeDream(context.Background(), text, profile)
	concurrent := newTestSystem(WithConcurrency(true)).AnalyzeDream(context.Background(), text, profile)
	assert.Equal(t, sequential, concurrent)
}

func TestSystem_DoesNotMutateHistory(t *testing.T) {
	history := historyOf("물", "집", "길", "산", "바다")
	snapshot := append([]HistoryEntry(nil), history...)

	newTestSystem().AnalyzeDream(context.Background(), "물 집", UserProfile{DreamHistory: history})
	assert.Equal(t, snapshot, history)
}

func TestSystem_ReportDoesNotShareTables(t *testing.T) {
	s := newTestSystem()
	text := "바다 속 물"

	first := s.AnalyzeDream(context.Background(), text, UserProfile{})
	require.Contains(t, first.Symbolic().SymbolInterpretations, SymbolWater)
	require.Contains(t, first.Symbolic().KoreanSymbols, "바다")
	first.Symbolic().SymbolInterpretations[SymbolWater].Meanings[0] = "changed"
	first.Symbolic().KoreanSymbols["바다"][0] = "changed"

	second := s.AnalyzeDream(context.Background(), text, UserProfile{})
	assert.Equal(t, "감정", second.Symbolic().SymbolInterpretations[SymbolWater].Meanings[0])
	assert.Equal(t, "무한함", second.Symbolic().KoreanSymbols["바다"][0])
}
