package domain

// Chunk represents the retrievable unit of document text.
// Chunks are created during ingestion and are read-only to the query core.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the zero-based ordinal position within the document.
	// Unique per document.
	Index int

	// Text is the chunk's extracted text content.
	Text string

	// Embedding is the vector representation for semantic search.
	// Its length must equal the corpus-wide embedding dimension.
	Embedding []float32

	// Page is the source page number, when known.
	Page *int

	// CharCount is the length of Text in characters.
	CharCount int

	// TokenCount is the approximate token count of Text.
	TokenCount int
}

// NewChunk builds a chunk and validates the embedding dimension against dim.
// A zero dim skips the check (used by stores that learn the dimension lazily).
func NewChunk(id, documentID string, index int, text string, embedding []float32, dim int) (Chunk, error) {
	if dim > 0 && len(embedding) != dim {
		return Chunk{}, ErrEmbeddingDimension
	}
	return Chunk{
		ID:         id,
		DocumentID: documentID,
		Index:      index,
		Text:       text,
		Embedding:  embedding,
		CharCount:  len(text),
		TokenCount: approxTokens(text),
	}, nil
}

// approxTokens estimates token count as characters/4, the usual
// rule of thumb for mixed English text.
func approxTokens(text string) int {
	return len(text) / 4
}
