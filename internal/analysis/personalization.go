package analysis

const (
	psychologicalSuffix = " (심리적 관점에서)"
	practicalSuffix     = " (실용적 관점에서)"
)

var koreanEmotionGlossary = map[string]string{
	"한":  "깊은 슬픔과 원한",
	"정":  "따뜻한 정과 사랑",
	"눈치": "상황 파악과 배려",
	"체면": "자존심과 위신",
}

var koreanSymbolGlossary = map[string]string{
	"산":  "고난과 성장의 상징",
	"바다": "무한한 가능성",
	"꽃":  "아름다움과 순수함",
	"비":  "정화와 새로운 시작",
}

// CulturalAdapter returns a shallow copy of a result adapted to a culture.
type CulturalAdapter interface {
	Adapt(name string, result Result, profile UserProfile) Result
}

// KoreanAdapter attaches Korean emotion and symbol glossaries to the
// emotional and symbolic results. Other results are copied unchanged.
type KoreanAdapter struct{}

func (KoreanAdapter) Adapt(_ string, result Result, _ UserProfile) Result {
	switch r := result.(type) {
	case *EmotionalResult:
		c := *r
		c.KoreanEmotions = copyGlossary(koreanEmotionGlossary)
		return &c
	case *SymbolicResult:
		c := *r
		c.KoreanInterpretations = copyGlossary(koreanSymbolGlossary)
		return &c
	default:
		return result.WithInsights(result.Insights())
	}
}

// PassThroughAdapter returns an unmodified copy. Used for western and eastern.
type PassThroughAdapter struct{}

func (PassThroughAdapter) Adapt(_ string, result Result, _ UserProfile) Result {
	return result.WithInsights(result.Insights())
}

// PersonalizationEngine adapts analyzer results to the user's culture and
// preferred analysis type.
type PersonalizationEngine struct {
	adapters map[Culture]CulturalAdapter
}

// NewPersonalizationEngine creates an engine with the korean, western and
// eastern adapters registered.
func NewPersonalizationEngine() *PersonalizationEngine {
	return &PersonalizationEngine{
		adapters: map[Culture]CulturalAdapter{
			CultureKorean:  KoreanAdapter{},
			CultureWestern: PassThroughAdapter{},
			CultureEastern: PassThroughAdapter{},
		},
	}
}

// Apply returns a new mapping; the input mapping and its results are not modified.
func (e *PersonalizationEngine) Apply(results map[string]Result, profile UserProfile) map[string]Result {
	adapter, ok := e.adapters[profile.CulturalBackground]
	if !ok {
		adapter = e.adapters[CultureKorean]
	}

	suffix := ""
	switch profile.Preferences.PreferredAnalysisType {
	case PreferencePsychological:
		suffix = psychologicalSuffix
	case PreferencePractical:
		suffix = practicalSuffix
	}

	personalized := make(map[string]Result, len(results))
	for name, result := range results {
		adapted := adapter.Adapt(name, result, profile)
		if suffix != "" {
			adapted = adapted.WithInsights(withSuffix(adapted.Insights(), suffix))
		}
		personalized[name] = adapted
	}
	return personalized
}

func withSuffix(insights []string, suffix string) []string {
	out := make([]string, len(insights))
	for i, s := range insights {
		out[i] = s + suffix
	}
	return out
}

func copyGlossary(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
