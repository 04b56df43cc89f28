// Package analysis implements the heuristic dream analysis pipeline.
//
// A fixed set of rule-based analyzers (cognitive, emotional, pattern and
// symbolic) runs over the same dream text and user profile. Their results are
// adapted to the user's cultural background and preferences, scored by the
// confidence evaluator and merged into a single Report by System.
//
// All matching is literal substring matching over the raw text. There is no
// tokenization, stemming or word-boundary handling.
package analysis
