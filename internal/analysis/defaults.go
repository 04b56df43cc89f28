package analysis

// DefaultResult returns the fixed stub substituted when the named analyzer
// fails. Unknown names get an empty pattern-style stub.
func DefaultResult(name string) Result {
	switch name {
	case NameCognitive:
		return &CognitiveResult{
			CognitiveFunctions: []string{},
			ProcessingType:     ProcessingUnknown,
			base:               base{InsightList: []string{"인지적 분석을 위해 더 많은 정보가 필요합니다"}, Score: 0.3},
		}
	case NameEmotional:
		return &EmotionalResult{
			PrimaryEmotions: []string{},
			EmotionalTone:   ToneNeutral,
			base:            base{InsightList: []string{"감정적 분석을 위해 더 많은 정보가 필요합니다"}, Score: 0.3},
		}
	case NameSymbolic:
		return &SymbolicResult{
			SymbolsFound: []string{},
			base:         base{InsightList: []string{"상징적 분석을 위해 더 많은 정보가 필요합니다"}, Score: 0.3},
		}
	case NamePattern:
		return &PatternResult{
			Status: StatusInsufficientData,
			base:   base{InsightList: []string{"패턴 분석을 위해 더 많은 꿈 기록이 필요합니다"}, Score: 0.2},
		}
	default:
		return &PatternResult{Status: StatusInsufficientData, base: base{InsightList: []string{}}}
	}
}
