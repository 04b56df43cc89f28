package analysis

const (
	defaultBaseConfidence = 0.5
	minConfidence         = 0.1
	maxConfidence         = 0.95
)

// ConfidenceEvaluator rescales each analyzer's self-reported confidence by
// the amount of history available and the number of insights produced.
type ConfidenceEvaluator struct{}

// NewConfidenceEvaluator creates a ConfidenceEvaluator.
func NewConfidenceEvaluator() *ConfidenceEvaluator {
	return &ConfidenceEvaluator{}
}

// Evaluate returns a score in [0.1, 0.95] for every result. A nil result is
// scored from the default base confidence of 0.5.
func (e *ConfidenceEvaluator) Evaluate(results map[string]Result, profile UserProfile) map[string]float64 {
	quality := dataQualityFactor(len(profile.DreamHistory))
	scores := make(map[string]float64, len(results))
	for name, result := range results {
		baseScore := defaultBaseConfidence
		insightCount := 0
		if result != nil {
			baseScore = result.Confidence()
			insightCount = len(result.Insights())
		}
		scores[name] = clamp(baseScore*quality*consistencyFactor(insightCount), minConfidence, maxConfidence)
	}
	return scores
}

func dataQualityFactor(historyLen int) float64 {
	switch {
	case historyLen >= 20:
		return 1.0
	case historyLen >= 10:
		return 0.8
	case historyLen >= 5:
		return 0.6
	default:
		return 0.4
	}
}

func consistencyFactor(insightCount int) float64 {
	switch {
	case insightCount >= 2:
		return 1.0
	case insightCount == 1:
		return 0.7
	default:
		return 0.5
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
