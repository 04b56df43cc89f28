// Package similarity builds the dream similarity network.
//
// Dream texts are embedded by an Embedder (Gemini when configured, a local
// hashing embedder otherwise), cached in a bounded LRU, indexed in an
// in-memory chromem-go collection and connected when their cosine similarity
// exceeds a threshold.
package similarity
