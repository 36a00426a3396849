// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the query pipeline to function:
//
//   - ChunkCorpus: Read-only snapshot of chunks from ready documents
//   - DocumentStore: ChunkCorpus plus the write side used by ingestion
//   - EmbeddingService: Generates query/document vector embeddings
//   - LLMService: Generative model invocation for answers and utility tasks
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - VectorSearcher: Delegated nearest-neighbour search (e.g. pgvector).
//     Without it, semantic retrieval falls back to an exact cosine scan.
//   - PromptStore: Customisable prompt templates. Without it, embedded
//     defaults are used.
//   - ConfigStore: Application configuration.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
