package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

// TestUtility_Summarize tests the summarize template over query text
func TestUtility_Summarize(t *testing.T) {
	llm := &mockLLM{response: "A short summary."}
	utility := NewUtility(llm)

	state := domain.NewQueryState("summarize: the project shipped late because...", nil)
	state.Intent = domain.IntentSummarize

	require.NoError(t, utility.Run(context.Background(), state))

	assert.Equal(t, "A short summary.", state.Answer)
	assert.Empty(t, state.Citations)
	assert.Equal(t, "utility", state.Metadata["agent"])
	assert.Equal(t, "SUMMARIZE", state.Metadata["utility_function"])
	assert.Contains(t, llm.lastPrompt, "Summarize the following text")
	assert.Contains(t, llm.lastPrompt, "the project shipped late")
}

// TestUtility_DocumentTextPreferred tests the batch case uses the
// document's assembled text instead of the query
func TestUtility_DocumentTextPreferred(t *testing.T) {
	llm := &mockLLM{response: "summary"}
	utility := NewUtility(llm)

	state := domain.NewQueryState("ignored query", nil)
	state.Intent = domain.IntentSummarize
	state.DocumentText = "full document body"

	require.NoError(t, utility.Run(context.Background(), state))

	assert.Contains(t, llm.lastPrompt, "full document body")
	assert.NotContains(t, llm.lastPrompt, "ignored query")
}

// TestUtility_TranslateDirection tests the script heuristic picks the
// translation target
func TestUtility_TranslateDirection(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantTarget string
	}{
		{"latin input translates to persian", "translate: hello friend", "Persian"},
		{"persian input translates to english", "ترجمه کن: سلام دوست من", "English"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{response: "translated"}
			utility := NewUtility(llm)

			state := domain.NewQueryState(tt.text, nil)
			state.Intent = domain.IntentTranslate

			require.NoError(t, utility.Run(context.Background(), state))
			assert.Contains(t, llm.lastPrompt, "Translate the following text to "+tt.wantTarget)
		})
	}
}

// TestUtility_Checklist tests the checklist template
func TestUtility_Checklist(t *testing.T) {
	llm := &mockLLM{response: "- [ ] step one"}
	utility := NewUtility(llm)

	state := domain.NewQueryState("make a checklist from the deployment notes", nil)
	state.Intent = domain.IntentChecklist

	require.NoError(t, utility.Run(context.Background(), state))

	assert.Contains(t, llm.lastPrompt, "checklist or task list")
	assert.Equal(t, "- [ ] step one", state.Answer)
}

// TestUtility_ModelFailure tests failure is folded into the state
func TestUtility_ModelFailure(t *testing.T) {
	llm := &mockLLM{generror: errors.New("rate limited")}
	utility := NewUtility(llm)

	state := domain.NewQueryState("summarize this", nil)
	state.Intent = domain.IntentSummarize

	require.NoError(t, utility.Run(context.Background(), state))

	assert.Equal(t, utilityErrorAnswer, state.Answer)
	assert.Contains(t, state.Err, "rate limited")
	assert.Equal(t, "rate limited", state.Metadata["utility_error"])
}

// TestUtility_InvalidIntent tests the one error that surfaces: a
// non-utility intent indicates a caller bug
func TestUtility_InvalidIntent(t *testing.T) {
	utility := NewUtility(&mockLLM{})

	state := domain.NewQueryState("question", nil)
	state.Intent = domain.IntentAnswer

	err := utility.Run(context.Background(), state)

	require.ErrorIs(t, err, domain.ErrInvalidIntent)
}

// TestUtility_CustomLanguages tests a reconfigured language pair
func TestUtility_CustomLanguages(t *testing.T) {
	llm := &mockLLM{response: "übersetzt"}
	utility := NewUtility(llm)
	utility.SetLanguages("German", "English")

	state := domain.NewQueryState("translate: guten morgen", nil)
	state.Intent = domain.IntentTranslate

	require.NoError(t, utility.Run(context.Background(), state))
	assert.Contains(t, llm.lastPrompt, "Translate the following text to German")
}
