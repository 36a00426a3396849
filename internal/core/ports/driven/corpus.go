package driven

import (
	"context"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

// ChunkCorpus exposes the retrievable chunk set to the query core.
// The corpus is owned and mutated by ingestion; the core only ever takes
// read snapshots restricted to documents in Ready status. A snapshot needs
// no isolation beyond read-committed: queries never mutate shared state.
type ChunkCorpus interface {
	// ReadyChunks returns all chunks belonging to Ready documents.
	ReadyChunks(ctx context.Context) ([]domain.Chunk, error)

	// ReadyChunksForDocument returns the Ready chunks of one document,
	// ordered by chunk index. Returns domain.ErrNotFound when the document
	// does not exist and domain.ErrDocumentNotReady when it is not Ready.
	ReadyChunksForDocument(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetDocument retrieves a document by ID for title/status lookup.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DocumentText returns a Ready document's full text, assembled from
	// its chunks in index order.
	DocumentText(ctx context.Context, id string) (string, error)
}
