package services

import "github.com/quarry-labs/askdoc/internal/core/ports/driven"

// Embedded default prompts. A PromptStore can override any of them;
// without one these are used directly.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const (
	defaultAnswerPrompt = `You are a helpful AI assistant that answers questions based strictly on the provided document context.

Context from documents:
%s
%s
User Question: %s

Instructions:
1. Analyze the provided context carefully
2. Generate a concise, accurate answer based ONLY on the information in the context
3. If the context doesn't contain enough information to answer, say so explicitly
4. Do not introduce outside knowledge
5. Reference the documents that support your answer

Answer:`

	defaultSummarizePrompt = `Summarize the following text concisely:

%s

Provide a clear, concise summary.`

	defaultTranslatePrompt = `Translate the following text to %s. Return only the translation.

%s`

	defaultChecklistPrompt = `Create a structured checklist or task list based on the following text:

%s`
)

// loadPrompt returns the stored template for name, falling back to the
// embedded default when no store is configured or the load fails.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}
