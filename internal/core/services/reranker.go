package services

import "github.com/quarry-labs/askdoc/internal/core/domain"

// Reranker combined-score weights: relevance dominates, diversity breaks
// same-document pile-ups.
const (
	rerankRelevanceWeight = 0.7
	rerankDiversityWeight = 0.3
)

// Rerank selects up to k fused results, trading relevance against source
// diversity. When the input already fits in k it is returned unchanged.
//
// Selection is greedy: the highest-scored candidate is always taken
// first. Each subsequent slot takes the remaining candidate with the
// highest combined score
//
//	0.7*relevance + 0.3*diversity, diversity = 1/(1+sameDocSelected)
//
// where sameDocSelected counts already-selected chunks from the
// candidate's document. This bounds how many chunks one document
// contributes when equally relevant alternatives exist elsewhere,
// without ever excluding a document outright. Deterministic given
// deterministic input ordering.
func Rerank(fused []domain.FusedResult, k int) []domain.FusedResult {
	if len(fused) <= k {
		return fused
	}

	selected := make([]domain.FusedResult, 0, k)
	remaining := make([]domain.FusedResult, len(fused))
	copy(remaining, fused)

	// Highest fused score goes first; input is ordered descending.
	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	docCounts := map[string]int{selected[0].Chunk.DocumentID: 1}

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := -1.0

		for i, candidate := range remaining {
			diversity := 1.0 / float64(1+docCounts[candidate.Chunk.DocumentID])
			combined := rerankRelevanceWeight*candidate.Score + rerankDiversityWeight*diversity
			if combined > bestScore {
				bestScore = combined
				bestIdx = i
			}
		}

		pick := remaining[bestIdx]
		selected = append(selected, pick)
		docCounts[pick.Chunk.DocumentID]++
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}
