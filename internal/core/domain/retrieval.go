package domain

// CandidateSource tags which retrieval method produced a candidate.
type CandidateSource string

// Retrieval methods feeding fusion.
const (
	SourceLexical  CandidateSource = "lexical"
	SourceSemantic CandidateSource = "semantic"
)

// RetrievalCandidate pairs a chunk with the raw score one retrieval
// method assigned it. Candidates are transient: they exist between
// retrieval and fusion and are discarded afterwards.
type RetrievalCandidate struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the method's raw relevance score. Lexical scores are
	// unbounded BM25 values; semantic scores are cosine similarities.
	Score float64

	// Source is the retrieval method that produced this candidate.
	Source CandidateSource
}

// FusedResult pairs a chunk with its fused score in [0,1].
// Fused results are ordered descending by score.
type FusedResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the weighted blend of normalized lexical and semantic scores.
	Score float64
}

// RetrievedChunk is a fused result hydrated with its document title,
// ready for prompting and citation building.
type RetrievedChunk struct {
	// Chunk is the retrieved chunk.
	Chunk Chunk

	// DocumentTitle is the owning document's title.
	DocumentTitle string

	// Score is the final relevance score after fusion and reranking.
	Score float64
}
