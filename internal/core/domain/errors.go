package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoDocuments indicates the corpus has no ready documents to search.
	// Retrieval records this on the query state and continues; it is not fatal.
	ErrNoDocuments = errors.New("no documents available for search")

	// ErrRetrieval indicates the retrieval stage failed (empty corpus,
	// embedding provider failure).
	ErrRetrieval = errors.New("retrieval error")

	// ErrGeneration indicates the generative model invocation failed.
	ErrGeneration = errors.New("generation error")

	// ErrEmbeddingDimension indicates a chunk embedding does not match the
	// corpus-wide dimension. Raised at ingestion/store boundaries.
	ErrEmbeddingDimension = errors.New("embedding dimension mismatch")

	// ErrInvalidIntent indicates an unknown intent or task value was passed
	// programmatically. This is a caller bug and surfaces immediately
	// instead of being folded into the query state.
	ErrInvalidIntent = errors.New("invalid intent")

	// ErrInvalidTransition indicates a disallowed document status change.
	ErrInvalidTransition = errors.New("invalid document status transition")

	// ErrDocumentNotReady indicates a document-level task was requested on a
	// document that is not in Ready status.
	ErrDocumentNotReady = errors.New("document is not ready")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
