package domain

import (
	"fmt"
	"strings"
)

// Intent is the classified task category of a user query.
type Intent string

// Known intents. IntentAnswer runs the retrieval pipeline; the other
// three run a single utility model call without retrieval.
const (
	IntentAnswer    Intent = "ANSWER"
	IntentSummarize Intent = "SUMMARIZE"
	IntentTranslate Intent = "TRANSLATE"
	IntentChecklist Intent = "CHECKLIST"
)

// UtilityIntents lists the intents handled by the utility branch.
var UtilityIntents = []Intent{IntentSummarize, IntentTranslate, IntentChecklist}

// IsUtility reports whether the intent bypasses retrieval.
func (i Intent) IsUtility() bool {
	for _, u := range UtilityIntents {
		if i == u {
			return true
		}
	}
	return false
}

// IsValid returns true for a known intent value.
func (i Intent) IsValid() bool {
	return i == IntentAnswer || i.IsUtility()
}

// ParseIntent converts a string into an Intent, case-insensitively.
// Unknown values return ErrInvalidIntent: passing one is a caller bug,
// not a runtime condition.
func ParseIntent(s string) (Intent, error) {
	intent := Intent(strings.ToUpper(strings.TrimSpace(s)))
	if !intent.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidIntent, s)
	}
	return intent, nil
}
