package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarry-labs/askdoc/internal/core/domain"
	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
	"github.com/quarry-labs/askdoc/internal/logger"
)

// FallbackAnswer is returned when no relevant chunks were retrieved.
// No model call is made in that case.
const FallbackAnswer = "I couldn't find relevant information in the uploaded documents " +
	"to answer your question. Could you please rephrase or ask something else?"

// generationApology is returned when the model invocation itself fails.
const generationApology = "I encountered an error while generating the answer."

// historyTurns is how many trailing chat turns are prepended to the
// prompt for conversational continuity (two exchanges).
const historyTurns = 4

// defaultTemperature keeps grounded answers close to the context.
const defaultTemperature = 0.3

// Synthesizer builds a grounded prompt from the retrieved chunks and
// invokes the generative model to produce an answer with aligned
// citations.
type Synthesizer struct {
	llm         driven.LLMService
	prompts     driven.PromptStore
	temperature float64
}

// NewSynthesizer creates an answer synthesizer.
func NewSynthesizer(llm driven.LLMService) *Synthesizer {
	return &Synthesizer{
		llm:         llm,
		temperature: defaultTemperature,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the embedded default prompts are used.
func (s *Synthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Synthesize generates a grounded answer for the state's query from its
// retrieved chunks. Expected failures never propagate: an empty chunk
// list yields the fixed fallback answer without a model call, and a
// model failure yields a generic apology with the error recorded on the
// state. Citations are emitted 1:1 for the chunks supplied to the
// prompt, never for anything outside them.
func (s *Synthesizer) Synthesize(ctx context.Context, state *domain.QueryState) {
	if len(state.RetrievedChunks) == 0 {
		logger.Debug("Synthesizer: no chunks retrieved, returning fallback")
		state.Answer = FallbackAnswer
		state.Citations = []domain.Citation{}
		return
	}

	prompt := s.buildPrompt(state)
	logger.Debug("Synthesizer: prompt is %d chars over %d chunks",
		len(prompt), len(state.RetrievedChunks))

	if s.llm == nil {
		state.Answer = generationApology
		state.Citations = []domain.Citation{}
		state.SetError(fmt.Sprintf("%v: %v", domain.ErrGeneration, domain.ErrLLMUnavailable))
		return
	}

	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		Temperature: s.temperature,
	})
	if err != nil {
		logger.Warn("Synthesizer: generation failed: %v", err)
		state.Answer = generationApology
		state.Citations = []domain.Citation{}
		state.SetError(fmt.Sprintf("%v: %v", domain.ErrGeneration, err))
		return
	}

	citations := make([]domain.Citation, 0, len(state.RetrievedChunks))
	for _, rc := range state.RetrievedChunks {
		citations = append(citations, domain.NewCitation(rc.Chunk, rc.DocumentTitle))
	}

	state.Answer = answer
	state.Citations = citations
	state.Metadata["agent"] = "synthesizer"
	state.Metadata["model"] = s.llm.ModelName()
}

// buildPrompt assembles the grounding context in reranked order, each
// chunk prefixed with its document title and page, plus the trailing
// chat history when present.
func (s *Synthesizer) buildPrompt(state *domain.QueryState) string {
	var contextParts []string
	for i, rc := range state.RetrievedChunks {
		page := "N/A"
		if rc.Chunk.Page != nil {
			page = fmt.Sprintf("%d", *rc.Chunk.Page)
		}
		contextParts = append(contextParts, fmt.Sprintf(
			"[Document %d: %s, Page %s]\n%s\n", i+1, rc.DocumentTitle, page, rc.Chunk.Text))
	}

	history := ""
	if len(state.ChatHistory) > 0 {
		turns := state.ChatHistory
		if len(turns) > historyTurns {
			turns = turns[len(turns)-historyTurns:]
		}
		var lines []string
		for _, msg := range turns {
			lines = append(lines, fmt.Sprintf("%s: %s", capitalize(msg.Role), msg.Content))
		}
		history = fmt.Sprintf("\nPrevious conversation:\n%s\n", strings.Join(lines, "\n"))
	}

	template := loadPrompt(s.prompts, driven.PromptAnswer, defaultAnswerPrompt)
	return fmt.Sprintf(template, strings.Join(contextParts, "\n"), history, state.Query)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
