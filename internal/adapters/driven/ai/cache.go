package ai

import (
	"context"
	"sync"

	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
)

// Ensure CachedEmbedding implements the interface.
var _ driven.EmbeddingService = (*CachedEmbedding)(nil)

// DefaultCacheSize bounds the memoization cache.
const DefaultCacheSize = 1024

// CachedEmbedding memoizes Embed calls so repeated identical queries do
// not hit the provider again. Entries are evicted in insertion order once
// the cache is full. EmbedBatch is not cached: it is the ingestion path
// and its texts rarely repeat.
type CachedEmbedding struct {
	inner driven.EmbeddingService

	mu      sync.Mutex
	entries map[cacheKey][]float32
	order   []cacheKey
	maxSize int
}

type cacheKey struct {
	text string
	mode driven.EmbedMode
}

// NewCachedEmbedding wraps svc with a bounded memoization cache.
func NewCachedEmbedding(svc driven.EmbeddingService, maxSize int) *CachedEmbedding {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &CachedEmbedding{
		inner:   svc,
		entries: make(map[cacheKey][]float32),
		maxSize: maxSize,
	}
}

// Embed returns the cached vector when the exact text and mode have been
// embedded before, otherwise delegates and stores the result.
func (s *CachedEmbedding) Embed(ctx context.Context, text string, mode driven.EmbedMode) ([]float32, error) {
	key := cacheKey{text: text, mode: mode}

	s.mu.Lock()
	cached, ok := s.entries[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	embedding, err := s.inner.Embed(ctx, text, mode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, exists := s.entries[key]; !exists {
		if len(s.order) >= s.maxSize {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.entries, oldest)
		}
		s.entries[key] = embedding
		s.order = append(s.order, key)
	}
	s.mu.Unlock()

	return embedding, nil
}

// EmbedBatch delegates without caching.
func (s *CachedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return s.inner.EmbedBatch(ctx, texts)
}

func (s *CachedEmbedding) Dimensions() int                { return s.inner.Dimensions() }
func (s *CachedEmbedding) ModelName() string              { return s.inner.ModelName() }
func (s *CachedEmbedding) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }
func (s *CachedEmbedding) Close() error                   { return s.inner.Close() }

// Len reports the number of cached embeddings.
func (s *CachedEmbedding) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
