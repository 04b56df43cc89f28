package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"

	LucidityIncreasing = "increasing"
	LucidityDecreasing = "decreasing"
	LucidityStable     = "stable"
	LucidityUnknown    = "unknown"
)

const (
	minPatternHistory = 3
	minChangeHistory  = 5
	recurrenceWindow  = 10
	changeWindow      = 5

	// Window mean differences beyond these thresholds count as a change.
	emotionTrendThreshold = 0.5
	lucidityThreshold     = 0.5

	insufficientPatternMessage = "패턴 분석을 위해서는 최소 3개의 꿈 기록이 필요합니다"
)

var (
	commonSymbols   = []string{"물", "집", "길", "사람", "동물", "차", "비행", "떨어짐"}
	commonLocations = []string{"집", "학교", "직장", "길", "산", "바다", "숲"}
	commonEmotions  = []string{"기쁨", "슬픔", "두려움", "화남", "놀람", "평온"}

	movementWords = []string{"걷다", "뛰다", "비행", "떨어지다"}
	peopleWords   = []string{"사람", "친구", "가족", "모르는"}
	animalWords   = []string{"개", "고양이", "동물", "새"}
)

// Emotion tags recorded by users, plus the analyzer's own category names.
var (
	positiveTags = map[string]bool{
		"happy": true, "peaceful": true, "excited": true, "loved": true, "calm": true,
		EmotionJoy: true, EmotionExcitement: true, EmotionPeace: true,
	}
	negativeTags = map[string]bool{
		"sad": true, "angry": true, "fearful": true, "confused": true, "lonely": true, "anxious": true,
		EmotionAnxiety: true, EmotionAnger: true, EmotionSadness: true, EmotionFear: true, EmotionConfusion: true,
	}
)

// PatternAnalyzer mines the user's dream history for recurrence and trends.
type PatternAnalyzer struct{}

// NewPatternAnalyzer creates a PatternAnalyzer.
func NewPatternAnalyzer() *PatternAnalyzer {
	return &PatternAnalyzer{}
}

func (a *PatternAnalyzer) Name() string { return NamePattern }

// Analyze returns an insufficient_data result when the history holds fewer
// than three entries. It never returns an error.
func (a *PatternAnalyzer) Analyze(_ context.Context, text string, profile UserProfile) (Result, error) {
	history := profile.DreamHistory
	if len(history) < minPatternHistory {
		return &PatternResult{
			Status:  StatusInsufficientData,
			Message: insufficientPatternMessage,
			base:    base{InsightList: []string{}, Score: 0.0},
		}, nil
	}

	recurring := findRecurringElements(text, history)
	changes := analyzeChanges(history)
	features := extractCurrentFeatures(text)

	return &PatternResult{
		RecurringElements: recurring,
		ChangePatterns:    changes,
		CurrentFeatures:   features,
		base: base{
			InsightList: patternInsights(recurring, changes),
			Score:       math.Min(0.9, 0.3+0.05*float64(len(history))),
		},
	}, nil
}

func findRecurringElements(text string, history []HistoryEntry) *RecurringElements {
	currentSymbols := presentTokens(text, commonSymbols)
	currentEmotions := presentTokens(text, commonEmotions)
	currentLocations := presentTokens(text, commonLocations)

	recurring := &RecurringElements{
		Symbols:   []string{},
		Emotions:  []string{},
		Locations: []string{},
		Themes:    []string{},
	}
	for _, entry := range lastN(history, recurrenceWindow) {
		for _, s := range currentSymbols {
			if strings.Contains(entry.BodyText, s) {
				recurring.Symbols = appendUnique(recurring.Symbols, s)
			}
		}
		for _, e := range currentEmotions {
			if strings.Contains(entry.BodyText, e) {
				recurring.Emotions = appendUnique(recurring.Emotions, e)
			}
		}
		for _, l := range currentLocations {
			if strings.Contains(entry.BodyText, l) {
				recurring.Locations = appendUnique(recurring.Locations, l)
			}
		}
	}
	return recurring
}

func analyzeChanges(history []HistoryEntry) *ChangePatterns {
	if len(history) < minChangeHistory {
		return &ChangePatterns{Status: StatusInsufficientData}
	}

	n := len(history)
	recent := history[n-changeWindow:]
	var older []HistoryEntry
	if n >= 2*changeWindow {
		older = history[n-2*changeWindow : n-changeWindow]
	} else {
		older = history[:n-changeWindow]
	}

	return &ChangePatterns{
		EmotionTrend:   emotionTrend(recent, older),
		ThemeEvolution: themeEvolution(recent, older),
		LucidityChange: lucidityChange(recent, older),
	}
}

// emotionTrend compares the mean emotional valence of two windows. An
// entry's valence is its positive minus negative emotion tags plus its
// positive minus negative emotion categories detected in the body text.
func emotionTrend(recent, older []HistoryEntry) string {
	if len(recent) == 0 || len(older) == 0 {
		return TrendStable
	}
	diff := meanValence(recent) - meanValence(older)
	switch {
	case diff > emotionTrendThreshold:
		return TrendImproving
	case diff < -emotionTrendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func meanValence(entries []HistoryEntry) float64 {
	total := 0
	for _, e := range entries {
		total += entryValence(e)
	}
	return float64(total) / float64(len(entries))
}

func entryValence(e HistoryEntry) int {
	v := 0
	for _, tag := range e.EmotionTags {
		switch {
		case positiveTags[tag]:
			v++
		case negativeTags[tag]:
			v--
		}
	}
	for _, group := range emotionPatterns {
		if !containsAny(e.BodyText, group.keywords) {
			continue
		}
		switch {
		case positiveEmotions[group.name]:
			v++
		case negativeEmotions[group.name]:
			v--
		}
	}
	return v
}

func themeEvolution(recent, older []HistoryEntry) *ThemeEvolution {
	recentSymbols := collectSymbols(recent)
	olderSymbols := collectSymbols(older)
	return &ThemeEvolution{
		Emerging: difference(recentSymbols, olderSymbols),
		Fading:   difference(olderSymbols, recentSymbols),
	}
}

func collectSymbols(entries []HistoryEntry) []string {
	out := []string{}
	for _, e := range entries {
		for _, s := range e.Symbols {
			out = appendUnique(out, s)
		}
	}
	return out
}

func difference(a, b []string) []string {
	exclude := make(map[string]bool, len(b))
	for _, s := range b {
		exclude[s] = true
	}
	out := []string{}
	for _, s := range a {
		if !exclude[s] {
			out = append(out, s)
		}
	}
	return out
}

func lucidityChange(recent, older []HistoryEntry) *LucidityChange {
	change := &LucidityChange{
		RecentAverage: meanLucidity(recent),
		OlderAverage:  meanLucidity(older),
		Direction:     LucidityUnknown,
	}
	if change.RecentAverage == nil || change.OlderAverage == nil {
		return change
	}
	diff := *change.RecentAverage - *change.OlderAverage
	switch {
	case diff >= lucidityThreshold:
		change.Direction = LucidityIncreasing
	case diff <= -lucidityThreshold:
		change.Direction = LucidityDecreasing
	default:
		change.Direction = LucidityStable
	}
	return change
}

func meanLucidity(entries []HistoryEntry) *float64 {
	sum, n := 0, 0
	for _, e := range entries {
		if e.LucidityLevel != nil {
			sum += *e.LucidityLevel
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

func extractCurrentFeatures(text string) *CurrentFeatures {
	return &CurrentFeatures{
		Length:      utf8.RuneCountInString(text),
		HasDialogue: strings.ContainsAny(text, `"'`),
		HasMovement: containsAny(text, movementWords),
		HasPeople:   containsAny(text, peopleWords),
		HasAnimals:  containsAny(text, animalWords),
	}
}

func patternInsights(recurring *RecurringElements, changes *ChangePatterns) []string {
	insights := []string{}
	if len(recurring.Symbols) > 0 {
		insights = append(insights, fmt.Sprintf("'%s' 상징이 반복적으로 나타나고 있습니다",
			strings.Join(recurring.Symbols, ", ")))
	}
	if len(recurring.Emotions) > 0 {
		insights = append(insights, fmt.Sprintf("'%s' 감정이 자주 나타나는 패턴을 보입니다",
			strings.Join(recurring.Emotions, ", ")))
	}
	switch changes.EmotionTrend {
	case TrendImproving:
		insights = append(insights, "최근 꿈의 감정적 톤이 개선되고 있는 경향을 보입니다")
	case TrendDeclining:
		insights = append(insights, "최근 꿈의 감정적 톤이 부정적으로 변하고 있습니다")
	}
	return insights
}

func presentTokens(text string, tokens []string) []string {
	out := []string{}
	for _, t := range tokens {
		if strings.Contains(text, t) {
			out = append(out, t)
		}
	}
	return out
}

func lastN(entries []HistoryEntry, n int) []HistoryEntry {
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
