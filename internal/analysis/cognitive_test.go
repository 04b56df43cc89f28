package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCognitiveAnalyzer(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantFunctions  []string
		wantType       string
		wantInsight    string
		wantConfidence float64
	}{
		{
			name:           "empty text",
			text:           "",
			wantFunctions:  []string{},
			wantType:       ProcessingUnknown,
			wantInsight:    "인지적 처리 과정이 꿈에 반영되어 있습니다",
			wantConfidence: 0.5,
		},
		{
			name:           "problem solving outranks memory",
			text:           "옛날 학교에서 수학 문제를 해결하려고 했다",
			wantFunctions:  []string{"problem_solving", "memory_processing"},
			wantType:       "problem_solving",
			wantInsight:    "현실의 문제를 꿈에서 해결하려는 시도가 보입니다",
			wantConfidence: 0.8,
		},
		{
			name:           "memory consolidation",
			text:           "과거의 친구가 나왔다",
			wantFunctions:  []string{"memory_processing"},
			wantType:       "memory_consolidation",
			wantInsight:    "과거 경험을 정리하고 통합하는 과정으로 보입니다",
			wantConfidence: 0.7,
		},
		{
			name:           "creativity",
			text:           "신기한 풍경",
			wantFunctions:  []string{"creativity"},
			wantType:       "creative_processing",
			wantInsight:    "창의적 사고와 새로운 아이디어 생성 과정입니다",
			wantConfidence: 0.6,
		},
		{
			name:           "planning",
			text:           "여행 계획을 세웠다",
			wantFunctions:  []string{"planning"},
			wantType:       "future_planning",
			wantInsight:    "미래에 대한 계획과 준비 과정을 반영합니다",
			wantConfidence: 0.7,
		},
		{
			name:           "decision and learning do not select a type",
			text:           "선택을 하고 학습을 했다",
			wantFunctions:  []string{"decision_making", "learning"},
			wantType:       ProcessingUnknown,
			wantInsight:    "인지적 처리 과정이 꿈에 반영되어 있습니다",
			wantConfidence: 0.5,
		},
	}

	a := NewCognitiveAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Analyze(context.Background(), tt.text, UserProfile{})
			require.NoError(t, err)

			cog, ok := res.(*CognitiveResult)
			require.True(t, ok)
			assert.Equal(t, tt.wantFunctions, cog.CognitiveFunctions)
			assert.Equal(t, tt.wantType, cog.ProcessingType)
			assert.Equal(t, []string{tt.wantInsight}, cog.Insights())
			assert.InDelta(t, tt.wantConfidence, cog.Confidence(), 1e-9)
		})
	}
}
