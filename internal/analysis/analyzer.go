package analysis

import (
	"context"
	"strings"
)

// Analyzer maps a dream text and profile to a partial result.
//
// Implementations must be safe for concurrent use. A returned error (or a
// panic) is isolated by System and replaced with the analyzer's default stub.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, text string, profile UserProfile) (Result, error)
}

// keywordGroup is a named keyword list. Slices of groups keep declaration order.
type keywordGroup struct {
	name     string
	keywords []string
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func countPresent(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

// appendUnique appends v to s unless already present, keeping first-seen order.
func appendUnique(s []string, v string) []string {
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	return append(s, v)
}
