package similarity

import (
	"context"
	"crypto/sha256"
	"errors"
	"hash/fnv"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrEmptyText is returned when asked to embed blank text.
var ErrEmptyText = errors.New("cannot embed empty text")

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// DefaultHashingDimensions is the vector size of the hashing embedder.
const DefaultHashingDimensions = 512

// HashingEmbedder embeds text locally by hashing overlapping rune bigrams into
// a fixed number of buckets. It needs no network access.
type HashingEmbedder struct {
	Dimensions int
}

// Embed returns the L2-normalized bigram histogram of text.
func (h HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	dims := h.Dimensions
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}

	runes := []rune(strings.ToLower(strings.Join(strings.Fields(text), " ")))
	if len(runes) == 0 {
		return nil, ErrEmptyText
	}
	if len(runes) == 1 {
		runes = append(runes, ' ')
	}

	vec := make([]float32, dims)
	for i := 0; i+1 < len(runes); i++ {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(string(runes[i : i+2])))
		vec[hasher.Sum32()%uint32(dims)]++
	}
	normalize(vec)
	return vec, nil
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// CacheObserver receives embedding cache hits and misses.
type CacheObserver interface {
	EmbeddingCacheLookup(hit bool)
}

// CachedEmbedder memoizes another Embedder in a bounded LRU keyed by a
// digest of the text.
type CachedEmbedder struct {
	next     Embedder
	cache    *lru.Cache[[sha256.Size]byte, []float32]
	observer CacheObserver
}

// NewCachedEmbedder wraps next with an LRU of size entries. observer may be nil.
func NewCachedEmbedder(next Embedder, size int, observer CacheObserver) (*CachedEmbedder, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[[sha256.Size]byte, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{next: next, cache: cache, observer: observer}, nil
}

// Embed returns the cached vector for text or computes and stores it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := sha256.Sum256([]byte(text))
	if vec, ok := c.cache.Get(key); ok {
		c.observe(true)
		return vec, nil
	}
	c.observe(false)

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	return vec, nil
}

// Len reports the number of cached vectors.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

func (c *CachedEmbedder) observe(hit bool) {
	if c.observer != nil {
		c.observer.EmbeddingCacheLookup(hit)
	}
}
