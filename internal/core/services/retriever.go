package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/quarry-labs/askdoc/internal/core/domain"
	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
	"github.com/quarry-labs/askdoc/internal/logger"
)

// Retriever produces two independently ranked candidate lists for a query:
// lexical (in-process BM25) and semantic (cosine similarity over chunk
// embeddings, optionally delegated to a VectorSearcher).
type Retriever struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorSearcher
}

// NewRetriever creates a hybrid retriever.
// The embedder may be nil, in which case semantic retrieval is skipped
// and only lexical candidates are produced.
func NewRetriever(embedder driven.EmbeddingService) *Retriever {
	return &Retriever{embedder: embedder}
}

// SetVectorSearcher installs a delegated nearest-neighbour backend.
// When set, semantic candidates for unscoped queries come from it instead
// of the exact cosine scan.
func (r *Retriever) SetVectorSearcher(vs driven.VectorSearcher) {
	r.vectors = vs
}

// Retrieve runs lexical and semantic retrieval over the snapshot and
// returns both candidate lists, each capped at 2*k to bound fusion cost.
//
// An empty snapshot returns domain.ErrNoDocuments with two empty lists;
// the caller records it as a non-fatal retrieval error. An embedding
// failure likewise returns the lexical list alone with the error.
func (r *Retriever) Retrieve(
	ctx context.Context, query string, snapshot []domain.Chunk, k int,
) (lexical, semantic []domain.RetrievalCandidate, err error) {
	if len(snapshot) == 0 {
		return nil, nil, domain.ErrNoDocuments
	}

	limit := 2 * k

	lexical = r.lexicalSearch(query, snapshot, limit)
	logger.Debug("Retriever: %d lexical candidates", len(lexical))

	semantic, err = r.semanticSearch(ctx, query, snapshot, limit)
	if err != nil {
		logger.Warn("Retriever: semantic search failed: %v", err)
		return lexical, nil, fmt.Errorf("semantic search: %w", err)
	}
	logger.Debug("Retriever: %d semantic candidates", len(semantic))

	return lexical, semantic, nil
}

// lexicalSearch scores the snapshot with BM25 and returns the top
// candidates, stable-sorted descending so ties keep corpus order.
func (r *Retriever) lexicalSearch(query string, snapshot []domain.Chunk, limit int) []domain.RetrievalCandidate {
	idx := newBM25Index(chunkTexts(snapshot))
	scores := idx.Scores(query)

	candidates := make([]domain.RetrievalCandidate, len(snapshot))
	for i, chunk := range snapshot {
		candidates[i] = domain.RetrievalCandidate{
			Chunk:  chunk,
			Score:  scores[i],
			Source: domain.SourceLexical,
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return truncate(candidates, limit)
}

// semanticSearch embeds the query and ranks the snapshot by cosine
// similarity. When a VectorSearcher is installed the nearest-neighbour
// scan is delegated to it; hits outside the snapshot are dropped so a
// document scope is always honoured.
func (r *Retriever) semanticSearch(
	ctx context.Context, query string, snapshot []domain.Chunk, limit int,
) ([]domain.RetrievalCandidate, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedding, err := r.embedder.Embed(ctx, query, driven.EmbedModeQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if r.vectors != nil {
		return r.delegatedSearch(ctx, embedding, snapshot, limit)
	}

	candidates := make([]domain.RetrievalCandidate, len(snapshot))
	for i, chunk := range snapshot {
		candidates[i] = domain.RetrievalCandidate{
			Chunk:  chunk,
			Score:  cosineSimilarity(embedding, chunk.Embedding),
			Source: domain.SourceSemantic,
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return truncate(candidates, limit), nil
}

// delegatedSearch maps VectorSearcher hits back onto snapshot chunks.
func (r *Retriever) delegatedSearch(
	ctx context.Context, embedding []float32, snapshot []domain.Chunk, limit int,
) ([]domain.RetrievalCandidate, error) {
	hits, err := r.vectors.SimilaritySearch(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	byID := make(map[string]domain.Chunk, len(snapshot))
	for _, chunk := range snapshot {
		byID[chunk.ID] = chunk
	}

	candidates := make([]domain.RetrievalCandidate, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := byID[hit.ChunkID]
		if !ok {
			// Hit from outside the snapshot (stale index entry or
			// scoped query), skip it.
			continue
		}
		candidates = append(candidates, domain.RetrievalCandidate{
			Chunk:  chunk,
			Score:  hit.Similarity,
			Source: domain.SourceSemantic,
		})
	}

	return truncate(candidates, limit), nil
}

// cosineSimilarity computes (a·b)/(‖a‖·‖b‖). Mismatched or zero-norm
// vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func chunkTexts(chunks []domain.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return texts
}

func truncate(candidates []domain.RetrievalCandidate, limit int) []domain.RetrievalCandidate {
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
