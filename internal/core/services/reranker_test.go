package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

func fusedResult(id, docID string, score float64) domain.FusedResult {
	return domain.FusedResult{
		Chunk: domain.Chunk{ID: id, DocumentID: docID},
		Score: score,
	}
}

// TestRerank_ShortInputUnchanged tests the no-work fast path
func TestRerank_ShortInputUnchanged(t *testing.T) {
	fused := []domain.FusedResult{
		fusedResult("a", "doc-1", 0.9),
		fusedResult("b", "doc-1", 0.8),
		fusedResult("c", "doc-2", 0.7),
	}

	out := Rerank(fused, 5)

	assert.Equal(t, fused, out)
}

// TestRerank_TopScoreAlwaysFirst tests the seed selection
func TestRerank_TopScoreAlwaysFirst(t *testing.T) {
	fused := []domain.FusedResult{
		fusedResult("a", "doc-1", 1.0),
		fusedResult("b", "doc-2", 0.9),
		fusedResult("c", "doc-3", 0.8),
		fusedResult("d", "doc-4", 0.7),
	}

	out := Rerank(fused, 2)

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Chunk.ID)
}

// TestRerank_DiversityPullsInSecondDocument tests that a same-document
// pile-up yields a slot to another document: six results, the top four
// all from document A, the bottom two from document B, K=4
func TestRerank_DiversityPullsInSecondDocument(t *testing.T) {
	fused := []domain.FusedResult{
		fusedResult("a1", "doc-a", 0.95),
		fusedResult("a2", "doc-a", 0.94),
		fusedResult("a3", "doc-a", 0.93),
		fusedResult("a4", "doc-a", 0.92),
		fusedResult("b1", "doc-b", 0.90),
		fusedResult("b2", "doc-b", 0.85),
	}

	out := Rerank(fused, 4)

	require.Len(t, out, 4)

	var fromB int
	for _, fr := range out {
		if fr.Chunk.DocumentID == "doc-b" {
			fromB++
		}
	}
	// With a1 selected, b1 combines to 0.7*0.90 + 0.3*1.0 = 0.93,
	// beating a2's 0.7*0.94 + 0.3*0.5 = 0.808.
	assert.GreaterOrEqual(t, fromB, 1, "a document-B chunk must be selected")
}

// TestRerank_NeverExcludesADocumentEntirely tests that diversity only
// reorders; a dominant document still contributes when K allows
func TestRerank_NeverExcludesADocumentEntirely(t *testing.T) {
	fused := []domain.FusedResult{
		fusedResult("a1", "doc-a", 0.9),
		fusedResult("a2", "doc-a", 0.89),
		fusedResult("a3", "doc-a", 0.88),
		fusedResult("b1", "doc-b", 0.2),
		fusedResult("b2", "doc-b", 0.1),
	}

	out := Rerank(fused, 4)

	docs := make(map[string]int)
	for _, fr := range out {
		docs[fr.Chunk.DocumentID]++
	}
	assert.Positive(t, docs["doc-a"])
	assert.Positive(t, docs["doc-b"])
}

// TestRerank_Deterministic tests repeated calls agree
func TestRerank_Deterministic(t *testing.T) {
	fused := []domain.FusedResult{
		fusedResult("a", "doc-1", 0.9),
		fusedResult("b", "doc-1", 0.9),
		fusedResult("c", "doc-2", 0.9),
		fusedResult("d", "doc-2", 0.9),
		fusedResult("e", "doc-3", 0.9),
	}

	first := Rerank(fused, 3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Rerank(fused, 3))
	}
}

// TestRerank_ExhaustsCandidates tests k larger than the candidate pool
func TestRerank_ExhaustsCandidates(t *testing.T) {
	fused := []domain.FusedResult{
		fusedResult("a", "doc-1", 0.9),
		fusedResult("b", "doc-2", 0.8),
	}

	out := Rerank(fused, 10)

	assert.Len(t, out, 2)
}
