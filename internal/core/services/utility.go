package services

import (
	"context"
	"fmt"
	"unicode"

	"github.com/quarry-labs/askdoc/internal/core/domain"
	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
	"github.com/quarry-labs/askdoc/internal/logger"
)

// utilityErrorAnswer is returned when the model call for a utility task fails.
const utilityErrorAnswer = "I encountered an error processing your request."

// Default translation language pair. Translation direction is
// auto-detected: Arabic-script input translates to the second language,
// anything else to the first.
const (
	DefaultPrimaryLanguage   = "Persian"
	DefaultSecondaryLanguage = "English"
)

// Utility handles the non-retrieval intents: summarize, translate and
// checklist generation. It operates on either the raw query text or a
// document's full assembled text, builds one of three fixed instruction
// templates and invokes the generative model once. No citations are
// produced.
type Utility struct {
	llm         driven.LLMService
	prompts     driven.PromptStore
	primary     string
	secondary   string
	temperature float64
}

// NewUtility creates a utility task handler.
func NewUtility(llm driven.LLMService) *Utility {
	return &Utility{
		llm:         llm,
		primary:     DefaultPrimaryLanguage,
		secondary:   DefaultSecondaryLanguage,
		temperature: defaultTemperature,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the embedded default prompts are used.
func (u *Utility) SetPromptStore(store driven.PromptStore) {
	u.prompts = store
}

// SetLanguages configures the translation language pair.
func (u *Utility) SetLanguages(primary, secondary string) {
	u.primary = primary
	u.secondary = secondary
}

// Run executes the state's utility intent over the document text when
// present, otherwise over the query itself. Model failures are folded
// into the state (generic answer, error recorded) and never propagate.
// The only returned error is domain.ErrInvalidIntent for an intent this
// handler does not know, which indicates a caller bug.
func (u *Utility) Run(ctx context.Context, state *domain.QueryState) error {
	source := state.DocumentText
	if source == "" {
		source = state.Query
	}

	var prompt string
	switch state.Intent {
	case domain.IntentSummarize:
		template := loadPrompt(u.prompts, driven.PromptSummarize, defaultSummarizePrompt)
		prompt = fmt.Sprintf(template, source)

	case domain.IntentTranslate:
		template := loadPrompt(u.prompts, driven.PromptTranslate, defaultTranslatePrompt)
		prompt = fmt.Sprintf(template, u.translationTarget(source), source)

	case domain.IntentChecklist:
		template := loadPrompt(u.prompts, driven.PromptChecklist, defaultChecklistPrompt)
		prompt = fmt.Sprintf(template, source)

	default:
		return fmt.Errorf("%w: %q is not a utility intent", domain.ErrInvalidIntent, state.Intent)
	}

	if u.llm == nil {
		state.Answer = utilityErrorAnswer
		state.SetError(fmt.Sprintf("utility error: %v", domain.ErrLLMUnavailable))
		state.Metadata["utility_error"] = domain.ErrLLMUnavailable.Error()
		return nil
	}

	answer, err := u.llm.Generate(ctx, prompt, driven.GenerateOptions{
		Temperature: u.temperature,
	})
	if err != nil {
		logger.Warn("Utility: generation failed: %v", err)
		state.Answer = utilityErrorAnswer
		state.SetError(fmt.Sprintf("utility error: %v", err))
		state.Metadata["utility_error"] = err.Error()
		return nil
	}

	state.Answer = answer
	state.Citations = []domain.Citation{}
	state.Metadata["agent"] = "utility"
	state.Metadata["utility_function"] = string(state.Intent)
	return nil
}

// translationTarget picks the direction by script heuristic: text
// containing Arabic-script runes is treated as primary-language input
// and translated to the secondary language, and vice versa.
func (u *Utility) translationTarget(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Arabic, r) {
			return u.secondary
		}
	}
	return u.primary
}
