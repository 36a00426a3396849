package driven

import "context"

// VectorSearcher provides delegated nearest-neighbour search over the
// corpus embeddings, e.g. a pgvector-backed index. It is optional: when
// absent, the retriever runs an exact cosine scan over the snapshot.
// Either path produces semantic candidates with identical score semantics.
type VectorSearcher interface {
	// SimilaritySearch finds the k most similar chunks to the query vector.
	// Hits are ordered by descending cosine similarity.
	SimilaritySearch(ctx context.Context, embedding []float32, k int) ([]VectorHit, error)
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
