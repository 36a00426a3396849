package services

import (
	"sort"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

// DefaultFusionWeight is the semantic share of the fused score.
// Semantic search carries more signal for natural-language questions,
// so the default favours it.
const DefaultFusionWeight = 0.7

// Fuse blends the lexical and semantic candidate lists into a single
// ranking. Each list's raw scores are min-max normalized to [0,1]
// independently, then combined per chunk as
//
//	fused = weight*semantic + (1-weight)*lexical
//
// with a missing entry in either list scoring 0. The output is ordered
// descending by fused score with ties broken by chunk ID, so identical
// inputs always produce byte-identical ordering. The list is not yet
// truncated; that happens after reranking.
func Fuse(lexical, semantic []domain.RetrievalCandidate, weight float64) []domain.FusedResult {
	lexicalNorm := normalizeScores(lexical)
	semanticNorm := normalizeScores(semantic)

	chunks := make(map[string]domain.Chunk)
	for _, c := range lexical {
		chunks[c.Chunk.ID] = c.Chunk
	}
	for _, c := range semantic {
		chunks[c.Chunk.ID] = c.Chunk
	}

	fused := make([]domain.FusedResult, 0, len(chunks))
	for id, chunk := range chunks {
		score := weight*semanticNorm[id] + (1-weight)*lexicalNorm[id]
		fused = append(fused, domain.FusedResult{Chunk: chunk, Score: score})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].Chunk.ID < fused[j].Chunk.ID
	})

	return fused
}

// normalizeScores min-max normalizes a candidate list's raw scores into
// [0,1], keyed by chunk ID. When max == min - all scores identical,
// including the single-candidate case - every candidate gets exactly 1.0
// instead of dividing by zero.
func normalizeScores(candidates []domain.RetrievalCandidate) map[string]float64 {
	norm := make(map[string]float64, len(candidates))
	if len(candidates) == 0 {
		return norm
	}

	minScore, maxScore := candidates[0].Score, candidates[0].Score
	for _, c := range candidates[1:] {
		if c.Score < minScore {
			minScore = c.Score
		}
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}

	if maxScore == minScore {
		for _, c := range candidates {
			norm[c.Chunk.ID] = 1.0
		}
		return norm
	}

	for _, c := range candidates {
		norm[c.Chunk.ID] = (c.Score - minScore) / (maxScore - minScore)
	}
	return norm
}
