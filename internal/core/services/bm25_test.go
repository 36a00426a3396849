package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBM25_RanksMatchingDocsHigher tests basic relevance ordering
func TestBM25_RanksMatchingDocsHigher(t *testing.T) {
	idx := newBM25Index([]string{
		"the quick brown fox jumps over the lazy dog",
		"postgres replication and failover procedures",
		"failover runbook for the postgres cluster",
	})

	scores := idx.Scores("postgres failover")

	require.Len(t, scores, 3)
	assert.Zero(t, scores[0])
	assert.Greater(t, scores[1], 0.0)
	assert.Greater(t, scores[2], 0.0)
}

// TestBM25_TermFrequencySaturates tests that repeated terms gain
// diminishing weight
func TestBM25_TermFrequencySaturates(t *testing.T) {
	idx := newBM25Index([]string{
		"billing",
		"billing billing billing billing billing billing billing billing",
		"unrelated text about gardening",
	})

	scores := idx.Scores("billing")

	// More occurrences score higher, but not 8x higher.
	assert.Greater(t, scores[1], scores[0])
	assert.Less(t, scores[1], 3*scores[0])
}

// TestBM25_CaseInsensitive tests lower-casing of corpus and query
func TestBM25_CaseInsensitive(t *testing.T) {
	idx := newBM25Index([]string{"Quarterly REVENUE Report"})

	scores := idx.Scores("revenue")

	assert.Greater(t, scores[0], 0.0)
}

// TestBM25_EmptyCorpus tests degenerate inputs stay finite
func TestBM25_EmptyCorpus(t *testing.T) {
	idx := newBM25Index(nil)
	assert.Empty(t, idx.Scores("anything"))

	idx = newBM25Index([]string{"", ""})
	scores := idx.Scores("anything")
	assert.Equal(t, []float64{0, 0}, scores)
}

// TestBM25_IDFNeverNegative tests the Lucene-style IDF floor
func TestBM25_IDFNeverNegative(t *testing.T) {
	// "common" appears in every document; plain Okapi IDF would go negative.
	idx := newBM25Index([]string{
		"common alpha",
		"common beta",
		"common gamma",
	})

	scores := idx.Scores("common")
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
	}
}
