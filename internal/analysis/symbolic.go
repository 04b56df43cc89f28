package analysis

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
)

const (
	SymbolFlying = "flying"
	SymbolWater  = "water"
	SymbolHouse  = "house"
	SymbolCar    = "car"

	// ContextGeneral is used when no declared context matched.
	ContextGeneral = "general"
)

type symbolContext struct {
	name string
	// keywords is a comma-joined keyword list.
	keywords string
}

type symbolEntry struct {
	symbol   string
	meanings []string
	contexts []symbolContext
	// triggers decide presence; meanings are never matched.
	triggers []string
}

var symbolDatabase = []symbolEntry{
	{
		symbol:   SymbolFlying,
		meanings: []string{"자유", "해방", "성취감", "통제감"},
		contexts: []symbolContext{
			{"high_altitude", "높은 목표, 야망"},
			{"low_altitude", "현실적 제약, 불안"},
			{"falling_while_flying", "실패에 대한 두려움"},
		},
		triggers: []string{"비행", "날다", "하늘", "공중"},
	},
	{
		symbol:   SymbolWater,
		meanings: []string{"감정", "무의식", "변화", "정화"},
		contexts: []symbolContext{
			{"calm_water", "평온, 안정감"},
			{"rough_water", "감정적 혼란, 스트레스"},
			{"deep_water", "깊은 감정, 무의식"},
			{"drowning", "감정에 압도당함"},
		},
		triggers: []string{"물", "바다", "강", "호수", "비"},
	},
	{
		symbol:   SymbolHouse,
		meanings: []string{"자아", "정신 상태", "안전", "개인 공간"},
		contexts: []symbolContext{
			{"childhood_house", "과거, 어린 시절"},
			{"new_house", "새로운 시작, 변화"},
			{"dark_house", "무의식, 숨겨진 부분"},
			{"house_on_fire", "변화, 정화, 위험"},
		},
		triggers: []string{"집", "집안", "방", "문"},
	},
	{
		symbol:   SymbolCar,
		meanings: []string{"인생의 방향", "통제감", "자율성"},
		contexts: []symbolContext{
			{"driving", "인생을 주도적으로 이끌어감"},
			{"passenger", "타인에 의존, 통제력 부족"},
			{"car_accident", "방향성 상실, 충돌"},
		},
		triggers: []string{"차", "자동차", "운전", "타다"},
	},
}

type localeSymbol struct {
	symbol   string
	meanings []string
}

var koreanSymbolTable = []localeSymbol{
	{"산", []string{"도전", "성장", "목표", "고난"}},
	{"바다", []string{"무한함", "감정", "미지의 세계"}},
	{"꽃", []string{"아름다움", "성장", "새로운 시작"}},
	{"비", []string{"정화", "새로운 시작", "감정의 표현"}},
}

// SymbolicAnalyzer looks up dream symbols and their contextual meaning.
type SymbolicAnalyzer struct{}

// NewSymbolicAnalyzer creates a SymbolicAnalyzer.
func NewSymbolicAnalyzer() *SymbolicAnalyzer {
	return &SymbolicAnalyzer{}
}

func (a *SymbolicAnalyzer) Name() string { return NameSymbolic }

// Analyze never returns an error.
func (a *SymbolicAnalyzer) Analyze(_ context.Context, text string, _ UserProfile) (Result, error) {
	found := []string{}
	interpretations := make(map[string]SymbolInterpretation)
	insights := []string{}

	for _, entry := range symbolDatabase {
		if !containsAny(text, entry.triggers) {
			continue
		}
		found = append(found, entry.symbol)
		interpretations[entry.symbol] = SymbolInterpretation{
			Meanings: slices.Clone(entry.meanings),
			Context:  symbolContextFor(text, entry.contexts),
		}
		insights = append(insights, fmt.Sprintf("'%s' 상징은 %s을 의미할 수 있습니다",
			entry.symbol, strings.Join(firstN(entry.meanings, 2), ", ")))
	}

	korean := make(map[string][]string)
	for _, ls := range koreanSymbolTable {
		if !strings.Contains(text, ls.symbol) {
			continue
		}
		korean[ls.symbol] = slices.Clone(ls.meanings)
		insights = append(insights, fmt.Sprintf("'%s'는 한국 문화에서 %s을 상징합니다",
			ls.symbol, strings.Join(firstN(ls.meanings, 2), ", ")))
	}

	return &SymbolicResult{
		SymbolsFound:          found,
		SymbolInterpretations: interpretations,
		KoreanSymbols:         korean,
		base: base{
			InsightList: insights,
			Score:       math.Min(0.9, 0.4+0.15*float64(len(found))),
		},
	}, nil
}

func symbolContextFor(text string, contexts []symbolContext) string {
	for _, c := range contexts {
		if containsAny(text, strings.Split(c.keywords, ", ")) {
			return c.name
		}
	}
	return ContextGeneral
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
