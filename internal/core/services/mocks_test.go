package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/quarry-labs/askdoc/internal/core/domain"
	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
)

// --- Shared mock implementations of the driven ports ---

// mockCorpus implements driven.ChunkCorpus over in-memory fixtures.
type mockCorpus struct {
	chunks     []domain.Chunk
	docs       map[string]*domain.Document
	readyErr   error
	readyCalls int
}

func (m *mockCorpus) ReadyChunks(_ context.Context) ([]domain.Chunk, error) {
	m.readyCalls++
	if m.readyErr != nil {
		return nil, m.readyErr
	}
	return m.chunks, nil
}

func (m *mockCorpus) ReadyChunksForDocument(_ context.Context, documentID string) ([]domain.Chunk, error) {
	m.readyCalls++
	doc, ok := m.docs[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !doc.IsReady() {
		return nil, domain.ErrDocumentNotReady
	}
	var scoped []domain.Chunk
	for _, c := range m.chunks {
		if c.DocumentID == documentID {
			scoped = append(scoped, c)
		}
	}
	sort.SliceStable(scoped, func(i, j int) bool { return scoped[i].Index < scoped[j].Index })
	return scoped, nil
}

func (m *mockCorpus) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockCorpus) DocumentText(ctx context.Context, id string) (string, error) {
	chunks, err := m.ReadyChunksForDocument(ctx, id)
	if err != nil {
		return "", err
	}
	var texts []string
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// mockEmbedder implements driven.EmbeddingService with a fixed query vector.
type mockEmbedder struct {
	vector   []float32
	embedErr error
	calls    int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string, _ driven.EmbedMode) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.vector
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int               { return len(m.vector) }
func (m *mockEmbedder) ModelName() string             { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error  { return nil }
func (m *mockEmbedder) Close() error                  { return nil }

// mockLLM implements driven.LLMService, recording the last prompt.
type mockLLM struct {
	response   string
	generror   error
	lastPrompt string
	calls      int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.generror != nil {
		return "", m.generror
	}
	return m.response, nil
}

func (m *mockLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	if m.generror != nil {
		return "", m.generror
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockVectorSearcher implements driven.VectorSearcher with canned hits.
type mockVectorSearcher struct {
	hits      []driven.VectorHit
	searchErr error
	calls     int
}

func (m *mockVectorSearcher) SimilaritySearch(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.calls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

// --- Fixture helpers ---

// unitVector returns a 2-d vector whose cosine similarity against [1,0]
// equals sim.
func unitVector(sim float64) []float32 {
	if sim > 1 {
		sim = 1
	}
	return []float32{float32(sim), float32(math.Sqrt(1 - sim*sim))}
}

func chunkFixture(id, docID string, index int, text string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		DocumentID: docID,
		Index:      index,
		Text:       text,
		Embedding:  embedding,
		CharCount:  len(text),
	}
}
