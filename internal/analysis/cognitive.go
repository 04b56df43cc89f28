package analysis

import "context"

const (
	cognitiveProblemSolving = "problem_solving"
	cognitiveMemory         = "memory_processing"
	cognitiveCreativity     = "creativity"
	cognitivePlanning       = "planning"
	cognitiveDecision       = "decision_making"
	cognitiveLearning       = "learning"

	// ProcessingUnknown is reported when no cognitive category matched.
	ProcessingUnknown = "unknown"
)

var cognitivePatterns = []keywordGroup{
	{cognitiveProblemSolving, []string{"해결", "찾다", "방법", "해답", "풀다", "고민"}},
	{cognitiveMemory, []string{"기억", "과거", "어릴때", "예전", "옛날", "기억나다"}},
	{cognitiveCreativity, []string{"새로운", "다른", "특별한", "이상한", "신기한", "창의적"}},
	{cognitivePlanning, []string{"계획", "준비", "미래", "다음", "앞으로", "준비하다"}},
	{cognitiveDecision, []string{"선택", "결정", "고르다", "어떻게", "어느것"}},
	{cognitiveLearning, []string{"배우다", "알다", "이해하다", "깨닫다", "학습"}},
}

type processingRule struct {
	category       string
	processingType string
	insight        string
	confidence     float64
}

// processingRules are checked in priority order. Decision making and
// learning never select a processing type.
var processingRules = []processingRule{
	{cognitiveProblemSolving, "problem_solving", "현실의 문제를 꿈에서 해결하려는 시도가 보입니다", 0.8},
	{cognitiveMemory, "memory_consolidation", "과거 경험을 정리하고 통합하는 과정으로 보입니다", 0.7},
	{cognitiveCreativity, "creative_processing", "창의적 사고와 새로운 아이디어 생성 과정입니다", 0.6},
	{cognitivePlanning, "future_planning", "미래에 대한 계획과 준비 과정을 반영합니다", 0.7},
}

const (
	cognitiveGenericInsight    = "인지적 처리 과정이 꿈에 반영되어 있습니다"
	cognitiveGenericConfidence = 0.5
)

// CognitiveAnalyzer classifies the cognitive function a dream reflects.
type CognitiveAnalyzer struct{}

// NewCognitiveAnalyzer creates a CognitiveAnalyzer.
func NewCognitiveAnalyzer() *CognitiveAnalyzer {
	return &CognitiveAnalyzer{}
}

func (a *CognitiveAnalyzer) Name() string { return NameCognitive }

// Analyze never returns an error.
func (a *CognitiveAnalyzer) Analyze(_ context.Context, text string, _ UserProfile) (Result, error) {
	functions := []string{}
	present := make(map[string]bool, len(cognitivePatterns))
	for _, group := range cognitivePatterns {
		if containsAny(text, group.keywords) {
			functions = append(functions, group.name)
			present[group.name] = true
		}
	}

	result := &CognitiveResult{
		CognitiveFunctions: functions,
		ProcessingType:     ProcessingUnknown,
		base: base{
			InsightList: []string{cognitiveGenericInsight},
			Score:       cognitiveGenericConfidence,
		},
	}
	for _, rule := range processingRules {
		if present[rule.category] {
			result.ProcessingType = rule.processingType
			result.InsightList = []string{rule.insight}
			result.Score = rule.confidence
			break
		}
	}
	return result, nil
}
