package services

import (
	"math"
	"strings"
)

// BM25 free parameters. Standard Okapi values.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// bm25Index scores documents against a query with Okapi BM25: saturating
// term-frequency weighting plus inverse document frequency. Tokenization
// is lower-casing and whitespace splitting; no stemming.
type bm25Index struct {
	termFreqs []map[string]int
	docLens   []float64
	avgLen    float64
	idf       map[string]float64
}

// newBM25Index builds an index over the given texts.
func newBM25Index(texts []string) *bm25Index {
	idx := &bm25Index{
		termFreqs: make([]map[string]int, len(texts)),
		docLens:   make([]float64, len(texts)),
		idf:       make(map[string]float64),
	}

	docFreqs := make(map[string]int)
	total := 0.0

	for i, text := range texts {
		tokens := tokenize(text)
		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		idx.termFreqs[i] = freqs
		idx.docLens[i] = float64(len(tokens))
		total += float64(len(tokens))

		for tok := range freqs {
			docFreqs[tok]++
		}
	}

	if len(texts) > 0 {
		idx.avgLen = total / float64(len(texts))
	}

	// Lucene-style IDF: ln(1 + (N - df + 0.5)/(df + 0.5)).
	// Always positive, so very common terms cannot flip scores negative.
	n := float64(len(texts))
	for tok, df := range docFreqs {
		idx.idf[tok] = math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
	}

	return idx
}

// Scores returns one BM25 score per indexed document for the query,
// in index order.
func (idx *bm25Index) Scores(query string) []float64 {
	scores := make([]float64, len(idx.termFreqs))
	if idx.avgLen == 0 {
		return scores
	}
	queryTokens := tokenize(query)

	for i, freqs := range idx.termFreqs {
		norm := bm25K1 * (1 - bm25B + bm25B*idx.docLens[i]/idx.avgLen)
		var score float64
		for _, tok := range queryTokens {
			tf := float64(freqs[tok])
			if tf == 0 {
				continue
			}
			score += idx.idf[tok] * tf * (bm25K1 + 1) / (tf + norm)
		}
		scores[i] = score
	}

	return scores
}

// tokenize lower-cases and splits on whitespace.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
