// Package gemini adapts Google's Gemini API into the two oracles the
// application uses: text completion for daily dream insights and text
// embeddings for the dream similarity network.
//
// Calls that fail transiently are retried with jittered exponential backoff.
// Blocked or malformed responses are returned immediately.
package gemini
