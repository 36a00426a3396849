package services

import (
	"strings"

	"github.com/quarry-labs/askdoc/internal/core/domain"
	"github.com/quarry-labs/askdoc/internal/logger"
)

// intentTriggers maps each utility intent to its trigger terms.
// Matching is case-insensitive substring matching over the query, so a
// single stem like "خلاصه" also covers "خلاصه کن" and "خلاصه‌اش کن".
// Terms are mixed English/Persian to match the deployments this serves.
type intentTriggers struct {
	intent domain.Intent
	terms  []string
}

// routingOrder is the fixed precedence: the first matching set wins and
// later sets are not evaluated. Queries matching nothing are answers.
var routingOrder = []intentTriggers{
	{domain.IntentSummarize, []string{"summarize", "summarise", "summary", "خلاصه"}},
	{domain.IntentTranslate, []string{"translate", "translation", "ترجمه", "به انگلیسی", "به فارسی"}},
	{domain.IntentChecklist, []string{"checklist", "چک‌لیست", "چک لیست", "action items", "task list", "کارها"}},
}

// Router classifies a query into a task intent. It is stateless, has no
// side effects and never fails.
type Router struct{}

// NewRouter creates a new intent router.
func NewRouter() *Router {
	return &Router{}
}

// Classify returns the intent of the query by testing its lower-cased form
// against the trigger sets in precedence order.
func (r *Router) Classify(query string) domain.Intent {
	lowered := strings.ToLower(query)

	for _, set := range routingOrder {
		for _, term := range set.terms {
			if strings.Contains(lowered, term) {
				logger.Debug("Router: matched %q -> %s", term, set.intent)
				return set.intent
			}
		}
	}

	return domain.IntentAnswer
}
