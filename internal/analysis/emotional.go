package analysis

import (
	"context"
	"math"
)

// Emotion categories in declaration order. Ties for the primary emotion go to
// the category declared first.
const (
	EmotionAnxiety    = "anxiety"
	EmotionJoy        = "joy"
	EmotionAnger      = "anger"
	EmotionSadness    = "sadness"
	EmotionFear       = "fear"
	EmotionExcitement = "excitement"
	EmotionPeace      = "peace"
	EmotionConfusion  = "confusion"

	// EmotionNeutral is the primary emotion when nothing matched.
	EmotionNeutral = "neutral"
)

const (
	IntensityHigh   = "high"
	IntensityMedium = "medium"
	IntensityLow    = "low"

	TonePositive = "positive"
	ToneNegative = "negative"
	ToneNeutral  = "neutral"
)

var emotionPatterns = []keywordGroup{
	{EmotionAnxiety, []string{"불안", "걱정", "두려움", "떨림", "무서워", "불안해"}},
	{EmotionJoy, []string{"기쁨", "행복", "즐거움", "웃음", "신나", "기뻐"}},
	{EmotionAnger, []string{"화", "분노", "짜증", "억울", "화나", "성내"}},
	{EmotionSadness, []string{"슬픔", "우울", "눈물", "아픔", "슬퍼", "우울해"}},
	{EmotionFear, []string{"무서워", "두려워", "겁나", "무서움", "두려움"}},
	{EmotionExcitement, []string{"신나", "흥분", "기대", "설레", "흥미로워"}},
	{EmotionPeace, []string{"평화", "고요", "안정", "편안", "평온", "차분"}},
	{EmotionConfusion, []string{"혼란", "헷갈려", "모르겠어", "어려워", "복잡해"}},
}

// intensityTiers are checked in order; the first tier with a match wins.
var intensityTiers = []keywordGroup{
	{IntensityHigh, []string{"매우", "정말", "너무", "엄청", "극도로"}},
	{IntensityMedium, []string{"꽤", "상당히", "어느정도"}},
	{IntensityLow, []string{"조금", "약간", "살짝"}},
}

var (
	positiveEmotions = map[string]bool{EmotionJoy: true, EmotionExcitement: true, EmotionPeace: true}
	negativeEmotions = map[string]bool{
		EmotionAnxiety: true, EmotionAnger: true, EmotionSadness: true, EmotionFear: true, EmotionConfusion: true,
	}
)

var primaryEmotionInsights = map[string]string{
	EmotionAnxiety: "불안감이 꿈에 반영되어 있습니다. 현실의 스트레스나 걱정이 영향을 미치고 있을 수 있습니다",
	EmotionJoy:     "긍정적인 감정이 꿈에 나타나고 있습니다. 만족스러운 상태나 기대감을 반영합니다",
	EmotionFear:    "두려움이 꿈에 표현되고 있습니다. 새로운 도전이나 변화에 대한 불안감일 수 있습니다",
	EmotionPeace:   "평온한 감정이 꿈에 나타나고 있습니다. 안정감이나 만족감을 반영합니다",
}

const highIntensityInsight = "감정의 강도가 높게 나타나고 있어, 이 감정이 현재 중요한 의미를 가지고 있을 수 있습니다"

// EmotionalAnalyzer detects emotions, their intensity and the overall tone.
type EmotionalAnalyzer struct{}

// NewEmotionalAnalyzer creates an EmotionalAnalyzer.
func NewEmotionalAnalyzer() *EmotionalAnalyzer {
	return &EmotionalAnalyzer{}
}

func (a *EmotionalAnalyzer) Name() string { return NameEmotional }

// Analyze never returns an error.
func (a *EmotionalAnalyzer) Analyze(_ context.Context, text string, _ UserProfile) (Result, error) {
	emotions := []string{}
	scores := make(map[string]int)
	primary := EmotionNeutral
	best := 0

	for _, group := range emotionPatterns {
		score := countPresent(text, group.keywords)
		if score == 0 {
			continue
		}
		emotions = append(emotions, group.name)
		scores[group.name] = score
		if score > best {
			best = score
			primary = group.name
		}
	}

	intensity := emotionIntensity(text)

	var insights []string
	if insight, ok := primaryEmotionInsights[primary]; ok {
		insights = append(insights, insight)
	}
	if intensity == IntensityHigh {
		insights = append(insights, highIntensityInsight)
	}
	if insights == nil {
		insights = []string{}
	}

	return &EmotionalResult{
		PrimaryEmotions: emotions,
		PrimaryEmotion:  primary,
		EmotionScores:   scores,
		Intensity:       intensity,
		EmotionalTone:   emotionalTone(emotions),
		base: base{
			InsightList: insights,
			Score:       math.Min(0.9, 0.5+0.1*float64(len(emotions))),
		},
	}, nil
}

func emotionIntensity(text string) string {
	for _, tier := range intensityTiers {
		if containsAny(text, tier.keywords) {
			return tier.name
		}
	}
	return IntensityMedium
}

func emotionalTone(emotions []string) string {
	positive, negative := 0, 0
	for _, e := range emotions {
		switch {
		case positiveEmotions[e]:
			positive++
		case negativeEmotions[e]:
			negative++
		}
	}
	switch {
	case positive > negative:
		return TonePositive
	case negative > positive:
		return ToneNegative
	default:
		return ToneNeutral
	}
}
