package driven

import (
	"context"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

// DocumentStore is the ingestion-facing write side of the corpus. Every
// storage adapter implements both this and ChunkCorpus over the same
// backing data, so chunks written here become retrievable the moment
// their document reaches Ready status.
type DocumentStore interface {
	ChunkCorpus

	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores the chunks of one document, replacing any
	// previously stored set.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// SetDocumentStatus moves a document through its lifecycle.
	// Returns domain.ErrInvalidTransition for a disallowed edge and
	// domain.ErrNotFound for an unknown document.
	SetDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
