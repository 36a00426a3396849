package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/quarry-labs/askdoc/internal/core/domain"
	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.ChunkCorpus   = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It backs tests and single-shot CLI runs where persistence is not needed.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores or updates a document. A missing ID is minted here.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks stores the chunks of one document, replacing any previous set.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = uuid.NewString()
		}
	}
	docID := chunks[0].DocumentID
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Index < stored[j].Index })
	s.chunks[docID] = stored
	return nil
}

// SetDocumentStatus moves a document through its lifecycle.
func (s *DocumentStore) SetDocumentStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := doc.TransitionTo(status); err != nil {
		return err
	}
	s.documents[id] = doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ReadyChunks returns all chunks belonging to Ready documents.
func (s *DocumentStore) ReadyChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docIDs := make([]string, 0, len(s.documents))
	for id, doc := range s.documents {
		if doc.IsReady() {
			docIDs = append(docIDs, id)
		}
	}
	// Map iteration order is random; retrieval wants a stable snapshot.
	sort.Strings(docIDs)

	var result []domain.Chunk
	for _, id := range docIDs {
		result = append(result, s.chunks[id]...)
	}
	return result, nil
}

// ReadyChunksForDocument returns one Ready document's chunks in index order.
func (s *DocumentStore) ReadyChunksForDocument(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !doc.IsReady() {
		return nil, domain.ErrDocumentNotReady
	}
	chunks := s.chunks[documentID]
	result := make([]domain.Chunk, len(chunks))
	copy(result, chunks)
	return result, nil
}

// DocumentText assembles a Ready document's full text in chunk index order.
func (s *DocumentStore) DocumentText(ctx context.Context, id string) (string, error) {
	chunks, err := s.ReadyChunksForDocument(ctx, id)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n\n"), nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// ListDocuments returns all documents, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		result = append(result, s.documents[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
