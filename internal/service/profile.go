package service

import (
	"cmp"
	"slices"

	"github.com/dreamtracer/dreamtracer-api/internal/analysis"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

// buildProfile assembles the pipeline context for user. history is expected
// newest first, as the dream store returns it, and is reversed so the most
// recent entry comes last. The dream identified by exclude is skipped.
func buildProfile(
	user *domain.User,
	history []*domain.Dream,
	exclude uuid.UUID,
	defaultCulture string,
) analysis.UserProfile {
	culture := user.CulturalBackground
	if culture == "" {
		culture = defaultCulture
	}

	entries := make([]analysis.HistoryEntry, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		d := history[i]
		if d.ID == exclude {
			continue
		}
		entries = append(entries, analysis.HistoryEntry{
			BodyText:      d.BodyText,
			EmotionTags:   d.EmotionTags,
			Symbols:       d.Symbols,
			LucidityLevel: d.LucidityLevel,
			DreamDate:     d.DreamDate,
		})
	}

	return analysis.UserProfile{
		UserID:             user.ID,
		CulturalBackground: analysis.ParseCulture(culture),
		DreamHistory:       entries,
		Preferences: analysis.Preferences{
			PreferredAnalysisType: analysis.ParsePreference(user.PreferredAnalysisType),
		},
	}
}

// topCounts returns the n most frequent values, most frequent first. Ties keep
// the order in which values were first seen. n <= 0 returns every value.
func topCounts(values []string, n int) []store.TagCount {
	index := make(map[string]int)
	counts := []store.TagCount{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if i, ok := index[v]; ok {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, store.TagCount{Value: v, Count: 1})
	}

	slices.SortStableFunc(counts, func(a, b store.TagCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
