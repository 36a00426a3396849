package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

func retrievedFixture(id, docID, title, text string, index int) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk:         domain.Chunk{ID: id, DocumentID: docID, Index: index, Text: text},
		DocumentTitle: title,
		Score:         0.9,
	}
}

// TestSynthesizer_EmptyChunksReturnsFallback tests that no model call is
// made without retrieved context
func TestSynthesizer_EmptyChunksReturnsFallback(t *testing.T) {
	llm := &mockLLM{response: "should never be used"}
	synth := NewSynthesizer(llm)
	state := domain.NewQueryState("what is the policy?", nil)

	synth.Synthesize(context.Background(), state)

	assert.Equal(t, FallbackAnswer, state.Answer)
	assert.Empty(t, state.Citations)
	assert.NotNil(t, state.Citations)
	assert.Zero(t, llm.calls, "model must not be invoked for an empty chunk list")
	assert.Empty(t, state.Err)
}

// TestSynthesizer_CitationsMatchSuppliedChunks tests citation grounding:
// one citation per supplied chunk, never one for an unseen chunk
func TestSynthesizer_CitationsMatchSuppliedChunks(t *testing.T) {
	llm := &mockLLM{response: "The policy allows refunds within 30 days."}
	synth := NewSynthesizer(llm)

	state := domain.NewQueryState("what is the refund policy?", nil)
	state.RetrievedChunks = []domain.RetrievedChunk{
		retrievedFixture("c1", "doc-1", "Refund Policy", "Refunds are accepted within 30 days.", 0),
		retrievedFixture("c2", "doc-2", "Terms of Service", "All sales terms are listed here.", 4),
	}

	synth.Synthesize(context.Background(), state)

	require.Len(t, state.Citations, 2)

	supplied := map[string]bool{"doc-1": true, "doc-2": true}
	for _, c := range state.Citations {
		assert.True(t, supplied[c.DocumentID], "citation %q references an unseen chunk", c.DocumentID)
	}
	assert.Equal(t, "Refund Policy", state.Citations[0].DocumentTitle)
	assert.Equal(t, 0, state.Citations[0].ChunkIndex)
	assert.Equal(t, 4, state.Citations[1].ChunkIndex)
	assert.Equal(t, "The policy allows refunds within 30 days.", state.Answer)
	assert.Equal(t, "synthesizer", state.Metadata["agent"])
}

// TestSynthesizer_PromptGroundsOnContext tests the prompt carries the
// chunk texts, titles and the question
func TestSynthesizer_PromptGroundsOnContext(t *testing.T) {
	llm := &mockLLM{response: "ok"}
	synth := NewSynthesizer(llm)

	page := 12
	state := domain.NewQueryState("what changed in v2?", nil)
	chunk := retrievedFixture("c1", "doc-1", "Changelog", "Version 2 added exports.", 1)
	chunk.Chunk.Page = &page
	state.RetrievedChunks = []domain.RetrievedChunk{chunk}

	synth.Synthesize(context.Background(), state)

	assert.Contains(t, llm.lastPrompt, "[Document 1: Changelog, Page 12]")
	assert.Contains(t, llm.lastPrompt, "Version 2 added exports.")
	assert.Contains(t, llm.lastPrompt, "what changed in v2?")
	assert.Contains(t, llm.lastPrompt, "ONLY")
}

// TestSynthesizer_IncludesRecentHistory tests conversational continuity
func TestSynthesizer_IncludesRecentHistory(t *testing.T) {
	llm := &mockLLM{response: "ok"}
	synth := NewSynthesizer(llm)

	state := domain.NewQueryState("and the second point?", []domain.ChatMessage{
		{Role: "user", Content: "turn one"},
		{Role: "assistant", Content: "answer one"},
		{Role: "user", Content: "turn two"},
		{Role: "assistant", Content: "answer two"},
		{Role: "user", Content: "turn three"},
		{Role: "assistant", Content: "answer three"},
	})
	state.RetrievedChunks = []domain.RetrievedChunk{
		retrievedFixture("c1", "doc-1", "Notes", "point list", 0),
	}

	synth.Synthesize(context.Background(), state)

	assert.Contains(t, llm.lastPrompt, "Previous conversation:")
	assert.Contains(t, llm.lastPrompt, "Assistant: answer three")
	// Only the trailing four turns survive.
	assert.NotContains(t, llm.lastPrompt, "turn one")
	assert.Contains(t, llm.lastPrompt, "User: turn three")
}

// TestSynthesizer_GenerationFailure tests the non-fatal failure contract
func TestSynthesizer_GenerationFailure(t *testing.T) {
	llm := &mockLLM{generror: errors.New("model overloaded")}
	synth := NewSynthesizer(llm)

	state := domain.NewQueryState("question", nil)
	state.RetrievedChunks = []domain.RetrievedChunk{
		retrievedFixture("c1", "doc-1", "Doc", "text", 0),
	}

	synth.Synthesize(context.Background(), state)

	assert.Equal(t, generationApology, state.Answer)
	assert.Empty(t, state.Citations)
	assert.Contains(t, state.Err, "generation error")
	assert.Contains(t, state.Err, "model overloaded")
}

// TestSynthesizer_NilLLM tests degradation without a configured model
func TestSynthesizer_NilLLM(t *testing.T) {
	synth := NewSynthesizer(nil)

	state := domain.NewQueryState("question", nil)
	state.RetrievedChunks = []domain.RetrievedChunk{
		retrievedFixture("c1", "doc-1", "Doc", "text", 0),
	}

	synth.Synthesize(context.Background(), state)

	assert.Equal(t, generationApology, state.Answer)
	assert.Contains(t, state.Err, "generation error")
}
