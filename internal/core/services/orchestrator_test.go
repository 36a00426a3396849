package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

func readyDoc(id, title string) *domain.Document {
	return &domain.Document{ID: id, Title: title, Status: domain.StatusReady}
}

// answerCorpus builds the reference corpus: four chunks across two
// documents, three lexically identical and one unrelated, with embedding
// similarities 0.95, 0.9, 0.4, 0.3 against the mock query vector.
func answerCorpus() *mockCorpus {
	return &mockCorpus{
		chunks: []domain.Chunk{
			chunkFixture("c1", "doc-1", 0, "invoice payment terms", unitVector(0.95)),
			chunkFixture("c2", "doc-1", 1, "invoice payment terms", unitVector(0.9)),
			chunkFixture("c3", "doc-2", 0, "invoice payment terms", unitVector(0.4)),
			chunkFixture("c4", "doc-2", 1, "gardening notes", unitVector(0.3)),
		},
		docs: map[string]*domain.Document{
			"doc-1": readyDoc("doc-1", "Billing Guide"),
			"doc-2": readyDoc("doc-2", "Misc Notes"),
		},
	}
}

// TestOrchestrator_UtilityBranchSkipsRetrieval tests that a summarize
// query never touches the corpus and returns no citations
func TestOrchestrator_UtilityBranchSkipsRetrieval(t *testing.T) {
	corpus := answerCorpus()
	llm := &mockLLM{response: "Here is a summary."}
	orch := NewOrchestrator(corpus, &mockEmbedder{vector: unitVector(1)}, llm)

	result := orch.Process(context.Background(), "Please summarize the findings", nil, domain.QueryOptions{})

	assert.Equal(t, "Here is a summary.", result.Answer)
	assert.Empty(t, result.Citations)
	assert.NotNil(t, result.Citations)
	assert.Empty(t, result.Error)
	assert.Equal(t, "SUMMARIZE", result.Metadata["intent"])
	assert.Zero(t, corpus.readyCalls, "utility branch must not read the corpus")
}

// TestOrchestrator_AnswerFlow tests the full retrieval chain: routing,
// hybrid retrieval, fusion, reranking and synthesis with citations
func TestOrchestrator_AnswerFlow(t *testing.T) {
	corpus := answerCorpus()
	llm := &mockLLM{response: "Payment is due in 30 days."}
	orch := NewOrchestrator(corpus, &mockEmbedder{vector: unitVector(1)}, llm)

	result := orch.Process(context.Background(), "what are the invoice payment terms?", nil, domain.QueryOptions{})

	assert.Equal(t, "Payment is due in 30 days.", result.Answer)
	assert.Empty(t, result.Error)
	assert.Equal(t, "ANSWER", result.Metadata["intent"])

	// All four chunks fit under the default top-K; fusion orders them by
	// blended score, which here matches the embedding ordering.
	require.Len(t, result.Citations, 4)
	assert.Equal(t, "doc-1", result.Citations[0].DocumentID)
	assert.Equal(t, "Billing Guide", result.Citations[0].DocumentTitle)
	assert.Equal(t, "doc-1", result.Citations[1].DocumentID)
	assert.Equal(t, "doc-2", result.Citations[2].DocumentID)
	assert.Equal(t, "Misc Notes", result.Citations[2].DocumentTitle)

	// The prompt carries the retrieved context and both titles.
	assert.Contains(t, llm.lastPrompt, "invoice payment terms")
	assert.Contains(t, llm.lastPrompt, "Billing Guide")
	assert.Contains(t, llm.lastPrompt, "Misc Notes")

	assert.Equal(t, 4, result.Metadata["num_fused"])
	assert.Equal(t, 4, result.Metadata["num_retrieved"])
}

// TestOrchestrator_EmptyCorpus tests the graceful empty-corpus result:
// fallback answer, empty citations, diagnostic error
func TestOrchestrator_EmptyCorpus(t *testing.T) {
	corpus := &mockCorpus{docs: map[string]*domain.Document{}}
	llm := &mockLLM{response: "unused"}
	orch := NewOrchestrator(corpus, &mockEmbedder{vector: unitVector(1)}, llm)

	result := orch.Process(context.Background(), "what is the policy?", nil, domain.QueryOptions{})

	assert.Equal(t, FallbackAnswer, result.Answer)
	assert.Empty(t, result.Citations)
	assert.NotNil(t, result.Citations)
	assert.Contains(t, result.Error, "no documents available")
	assert.Zero(t, llm.calls, "no generation without retrieved context")
}

// TestOrchestrator_EmbeddingOutageDegradesToLexical tests that a dead
// embedding provider still produces a lexically grounded answer
func TestOrchestrator_EmbeddingOutageDegradesToLexical(t *testing.T) {
	corpus := answerCorpus()
	llm := &mockLLM{response: "Lexical answer."}
	orch := NewOrchestrator(corpus, &mockEmbedder{embedErr: errors.New("connection refused")}, llm)

	result := orch.Process(context.Background(), "invoice payment terms", nil, domain.QueryOptions{})

	assert.Equal(t, "Lexical answer.", result.Answer)
	assert.Contains(t, result.Error, "connection refused")
	assert.NotEmpty(t, result.Citations)
	assert.Equal(t, 0, result.Metadata["num_semantic"])
}

// TestOrchestrator_DocumentScope tests scoped retrieval only cites the
// requested document
func TestOrchestrator_DocumentScope(t *testing.T) {
	corpus := answerCorpus()
	llm := &mockLLM{response: "scoped answer"}
	orch := NewOrchestrator(corpus, &mockEmbedder{vector: unitVector(1)}, llm)

	result := orch.Process(context.Background(), "invoice payment terms", nil, domain.QueryOptions{
		DocumentScope: "doc-2",
	})

	require.NotEmpty(t, result.Citations)
	for _, c := range result.Citations {
		assert.Equal(t, "doc-2", c.DocumentID)
	}
}

// TestOrchestrator_TopKOption tests the per-query override
func TestOrchestrator_TopKOption(t *testing.T) {
	corpus := answerCorpus()
	orch := NewOrchestrator(corpus, &mockEmbedder{vector: unitVector(1)}, &mockLLM{response: "ok"})

	result := orch.Process(context.Background(), "invoice payment terms", nil, domain.QueryOptions{TopK: 2})

	assert.Len(t, result.Citations, 2)
}

// panicCorpus panics on every read, standing in for a storage bug.
type panicCorpus struct{ mockCorpus }

func (p *panicCorpus) ReadyChunks(_ context.Context) ([]domain.Chunk, error) {
	panic("index out of range [3] with length 2")
}

// TestOrchestrator_PanicRecovery tests that a stage panic becomes an
// error-only result instead of crashing the caller
func TestOrchestrator_PanicRecovery(t *testing.T) {
	orch := NewOrchestrator(&panicCorpus{}, &mockEmbedder{vector: unitVector(1)}, &mockLLM{})

	var result domain.QueryResult
	require.NotPanics(t, func() {
		result = orch.Process(context.Background(), "what is the policy?", nil, domain.QueryOptions{})
	})

	assert.Empty(t, result.Answer)
	assert.Empty(t, result.Citations)
	assert.NotNil(t, result.Citations)
	assert.NotNil(t, result.Metadata)
	assert.Contains(t, result.Error, "internal error")
	assert.Contains(t, result.Error, "index out of range")
}

// TestProcessDocumentTask_Success tests a document-level summarize runs
// the utility over the assembled document text
func TestProcessDocumentTask_Success(t *testing.T) {
	corpus := answerCorpus()
	llm := &mockLLM{response: "Document summary."}
	orch := NewOrchestrator(corpus, nil, llm)

	result, err := orch.ProcessDocumentTask(context.Background(), "doc-1", "SUMMARIZE")

	require.NoError(t, err)
	assert.Equal(t, "Document summary.", result.Answer)
	assert.Empty(t, result.Error)
	assert.Equal(t, "Billing Guide", result.Metadata["document_title"])
	// Both of the document's chunks feed the prompt.
	assert.Contains(t, llm.lastPrompt, "invoice payment terms")
	assert.NotContains(t, llm.lastPrompt, "gardening notes")
}

// TestProcessDocumentTask_InvalidAction tests unknown and non-utility
// actions surface as errors, not results
func TestProcessDocumentTask_InvalidAction(t *testing.T) {
	orch := NewOrchestrator(answerCorpus(), nil, &mockLLM{})

	_, err := orch.ProcessDocumentTask(context.Background(), "doc-1", "EXPLODE")
	require.ErrorIs(t, err, domain.ErrInvalidIntent)

	_, err = orch.ProcessDocumentTask(context.Background(), "doc-1", "ANSWER")
	require.ErrorIs(t, err, domain.ErrInvalidIntent)
}

// TestProcessDocumentTask_MissingDocument tests the runtime failure path
func TestProcessDocumentTask_MissingDocument(t *testing.T) {
	orch := NewOrchestrator(answerCorpus(), nil, &mockLLM{})

	result, err := orch.ProcessDocumentTask(context.Background(), "doc-missing", "SUMMARIZE")

	require.NoError(t, err)
	assert.Contains(t, result.Error, "document task error")
}

// TestProcessDocumentTask_NotReady tests a document still processing
func TestProcessDocumentTask_NotReady(t *testing.T) {
	corpus := answerCorpus()
	corpus.docs["doc-3"] = &domain.Document{ID: "doc-3", Title: "Pending", Status: domain.StatusProcessing}
	orch := NewOrchestrator(corpus, nil, &mockLLM{})

	result, err := orch.ProcessDocumentTask(context.Background(), "doc-3", "TRANSLATE")

	require.NoError(t, err)
	assert.Contains(t, result.Error, "document is not ready")
}

// TestProcessDocumentTask_EmptyDocument tests a ready document whose
// chunks carry no text
func TestProcessDocumentTask_EmptyDocument(t *testing.T) {
	corpus := &mockCorpus{
		docs: map[string]*domain.Document{"doc-1": readyDoc("doc-1", "Empty")},
	}
	orch := NewOrchestrator(corpus, nil, &mockLLM{})

	result, err := orch.ProcessDocumentTask(context.Background(), "doc-1", "CHECKLIST")

	require.NoError(t, err)
	assert.Contains(t, result.Error, "no content chunks")
}
