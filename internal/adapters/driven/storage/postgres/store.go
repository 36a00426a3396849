// Package postgres provides a PostgreSQL-backed implementation of the
// document store and delegated vector search ports.
//
// The adapter relies on the pgvector extension: chunk embeddings are stored
// in a vector column and similarity search runs server-side with the cosine
// distance operator, so large corpora never need an in-process scan.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pgvector/pgvector-go"

	"github.com/quarry-labs/askdoc/internal/core/domain"
	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.DocumentStore  = (*Store)(nil)
	_ driven.VectorSearcher = (*Store)(nil)
)

// Store is a PostgreSQL document and chunk store with pgvector search.
type Store struct {
	db           *sql.DB
	embeddingDim int
}

// NewStore connects to PostgreSQL and prepares the schema. embeddingDim
// fixes the width of the vector column and must match the configured
// embedding model's dimensionality.
func NewStore(ctx context.Context, dsn string, embeddingDim int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	if embeddingDim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{db: db, embeddingDim: embeddingDim}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("enabling vector extension: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'UPLOADED',
			page_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d),
			page INTEGER,
			char_count INTEGER NOT NULL DEFAULT 0,
			token_count INTEGER NOT NULL DEFAULT 0,
			UNIQUE (document_id, idx)
		)`, s.embeddingDim),
		`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	return nil
}

// SaveDocument stores or updates a document. A missing ID is minted here.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, status, page_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			page_count = EXCLUDED.page_count,
			updated_at = EXCLUDED.updated_at
	`, doc.ID, doc.Title, string(doc.Status), doc.PageCount, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks stores the chunks of one document, replacing any previous set.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	docID := chunks[0].DocumentID
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = $1", docID); err != nil {
		return fmt.Errorf("clearing previous chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, idx, content, embedding, page, char_count, token_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		chunk := &chunks[i]
		if chunk.ID == "" {
			chunk.ID = uuid.NewString()
		}

		var embedding any
		if len(chunk.Embedding) > 0 {
			embedding = pgvector.NewVector(chunk.Embedding)
		}

		var page sql.NullInt64
		if chunk.Page != nil {
			page = sql.NullInt64{Int64: int64(*chunk.Page), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Index,
			chunk.Text, embedding, page, chunk.CharCount, chunk.TokenCount); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SetDocumentStatus moves a document through its lifecycle.
func (s *Store) SetDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := doc.TransitionTo(status); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3
	`, string(doc.Status), doc.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, status, page_count, created_at, updated_at
		FROM documents WHERE id = $1
	`, id)

	var doc domain.Document
	var status string
	if err := row.Scan(&doc.ID, &doc.Title, &status, &doc.PageCount,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

// ReadyChunks returns all chunks belonging to Ready documents, ordered by
// document then chunk index for a stable snapshot.
func (s *Store) ReadyChunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.idx, c.content, c.embedding, c.page, c.char_count, c.token_count
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.status = $1
		ORDER BY c.document_id, c.idx
	`, string(domain.StatusReady))
	if err != nil {
		return nil, fmt.Errorf("querying ready chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// ReadyChunksForDocument returns one Ready document's chunks in index order.
func (s *Store) ReadyChunksForDocument(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsReady() {
		return nil, domain.ErrDocumentNotReady
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, idx, content, embedding, page, char_count, token_count
		FROM chunks WHERE document_id = $1
		ORDER BY idx
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// DocumentText assembles a Ready document's full text in chunk index order.
func (s *Store) DocumentText(ctx context.Context, id string) (string, error) {
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

// DeleteDocument removes a document and its chunks (cascade).
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, page_count, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var status string
		if err := rows.Scan(&doc.ID, &doc.Title, &status, &doc.PageCount,
			&doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Status = domain.DocumentStatus(status)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// SimilaritySearch finds the k most similar Ready chunks to the query
// vector using pgvector's cosine distance operator. Similarity is
// 1 - distance, matching the in-process cosine scan's score semantics.
func (s *Store) SimilaritySearch(ctx context.Context, embedding []float32, k int) ([]driven.VectorHit, error) {
	if len(embedding) == 0 || k <= 0 {
		return nil, nil
	}

	vec := pgvector.NewVector(embedding)
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, 1 - (c.embedding <=> $1) AS similarity
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.status = $2 AND c.embedding IS NOT NULL
		ORDER BY c.embedding <=> $1
		LIMIT $3
	`, vec, string(domain.StatusReady), k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.VectorHit
		if err := rows.Scan(&hit.ChunkID, &hit.Similarity); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}

	return hits, nil
}

// scanChunks scans chunk rows.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embedding sql.Null[pgvector.Vector]
		var page sql.NullInt64

		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Text,
			&embedding, &page, &chunk.CharCount, &chunk.TokenCount); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		if embedding.Valid {
			chunk.Embedding = embedding.V.Slice()
		}
		if page.Valid {
			p := int(page.Int64)
			chunk.Page = &p
		}

		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}
