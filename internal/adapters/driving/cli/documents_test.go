package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/askdoc/internal/adapters/driven/storage/memory"
	"github.com/quarry-labs/askdoc/internal/core/domain"
)

// withDocumentStore injects an in-memory store for the test's duration.
func withDocumentStore(t *testing.T) *memory.DocumentStore {
	t.Helper()
	store := memory.NewDocumentStore()
	original := documentStore
	documentStore = store
	t.Cleanup(func() { documentStore = original })
	return store
}

func seedReadyDocument(t *testing.T, store *memory.DocumentStore, id, title string, texts ...string) {
	t.Helper()
	ctx := context.Background()

	doc := &domain.Document{ID: id, Title: title, Status: domain.StatusUploaded}
	require.NoError(t, store.SaveDocument(ctx, doc))

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{DocumentID: id, Index: i, Text: text}
	}
	require.NoError(t, store.SaveChunks(ctx, chunks))
	require.NoError(t, store.SetDocumentStatus(ctx, id, domain.StatusProcessing))
	require.NoError(t, store.SetDocumentStatus(ctx, id, domain.StatusReady))
}

func TestDocumentsList_Empty(t *testing.T) {
	withDocumentStore(t)

	out, err := executeCommand(t, "documents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents")
}

func TestDocumentsList_ShowsStatusAndTitle(t *testing.T) {
	store := withDocumentStore(t)
	seedReadyDocument(t, store, "doc-1", "Billing Guide", "text")

	pending := &domain.Document{ID: "doc-2", Title: "Pending Doc", Status: domain.StatusProcessing}
	require.NoError(t, store.SaveDocument(context.Background(), pending))

	out, err := executeCommand(t, "documents", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Billing Guide")
	assert.Contains(t, out, "READY")
	assert.Contains(t, out, "Pending Doc")
	assert.Contains(t, out, "PROCESSING")
	assert.Contains(t, out, "Total: 2 documents")
}

func TestDocumentsShow(t *testing.T) {
	store := withDocumentStore(t)
	seedReadyDocument(t, store, "doc-1", "Billing Guide", "chunk a", "chunk b")

	out, err := executeCommand(t, "documents", "show", "doc-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Billing Guide")
	assert.Contains(t, out, "READY")
	assert.Contains(t, out, "Chunks:   2")
}

func TestDocumentsShow_Missing(t *testing.T) {
	withDocumentStore(t)

	_, err := executeCommand(t, "documents", "show", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentsText(t *testing.T) {
	store := withDocumentStore(t)
	seedReadyDocument(t, store, "doc-1", "Doc", "first part", "second part")

	out, err := executeCommand(t, "documents", "text", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "first part\n\nsecond part")
}

func TestDocumentsAdd_IngestsFile(t *testing.T) {
	store := withDocumentStore(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	content := "First paragraph of the document.\n\nSecond paragraph with more detail."
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	out, err := executeCommand(t, "documents", "add", path, "--title", "Meeting Notes")
	require.NoError(t, err)
	assert.Contains(t, out, "Added document")
	assert.Contains(t, out, "Meeting Notes")

	docs, err := store.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Meeting Notes", docs[0].Title)
	assert.Equal(t, domain.StatusReady, docs[0].Status)

	chunks, err := store.ReadyChunksForDocument(context.Background(), docs[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0].Text, "First paragraph")
}

func TestDocumentsAdd_DefaultsTitleToFileName(t *testing.T) {
	store := withDocumentStore(t)

	path := filepath.Join(t.TempDir(), "quarterly-report.txt")
	require.NoError(t, os.WriteFile(path, []byte("report body"), 0600))

	_, err := executeCommand(t, "documents", "add", path)
	require.NoError(t, err)

	docs, err := store.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "quarterly-report", docs[0].Title)
}

func TestDocumentsAdd_EmptyFileFails(t *testing.T) {
	withDocumentStore(t)

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0600))

	_, err := executeCommand(t, "documents", "add", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestDocumentsDelete(t *testing.T) {
	store := withDocumentStore(t)
	seedReadyDocument(t, store, "doc-1", "Doc", "text")

	out, err := executeCommand(t, "documents", "delete", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document doc-1")

	_, err = store.GetDocument(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentsDelete_Missing(t *testing.T) {
	withDocumentStore(t)

	_, err := executeCommand(t, "documents", "delete", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSplitText_PacksParagraphs(t *testing.T) {
	text := "alpha\n\nbeta\n\ngamma"
	chunks := splitText(text, 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha\n\nbeta\n\ngamma", chunks[0])
}

func TestSplitText_SplitsOnLimit(t *testing.T) {
	long := strings.Repeat("x", 700)
	text := long + "\n\n" + long + "\n\n" + long
	chunks := splitText(text, 1200)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, long, c)
	}
}

func TestSplitText_SkipsBlankParagraphs(t *testing.T) {
	chunks := splitText("one\n\n   \n\ntwo", 4)
	require.Len(t, chunks, 2)
	assert.Equal(t, "one", chunks[0])
	assert.Equal(t, "two", chunks[1])
}
