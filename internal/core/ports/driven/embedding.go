package driven

import "context"

// EmbedMode distinguishes document-side from query-side embedding.
// Some providers (e.g. Gemini, nomic-embed-text) produce better retrieval
// when the two sides are embedded with different task prefixes.
type EmbedMode string

// Embedding task modes.
const (
	EmbedModeDocument EmbedMode = "document"
	EmbedModeQuery    EmbedMode = "query"
)

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Mode selects the retrieval side the vector will be used on.
	Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error)

	// EmbedBatch generates document-side embeddings for multiple texts.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	// This is fixed per deployment and must match the stored corpus.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
