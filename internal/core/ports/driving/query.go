package driving

import (
	"context"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

// QueryService answers natural-language questions over the ingested corpus.
// It is the single operation the core exposes to callers (CLI, API layers).
type QueryService interface {
	// Process runs one query through the full pipeline: intent routing,
	// then either hybrid retrieval + grounded synthesis or a utility task.
	// The result is always well-formed; expected failures (empty corpus,
	// provider outage) are reported through the result's Error field.
	Process(ctx context.Context, query string, history []domain.ChatMessage, opts domain.QueryOptions) domain.QueryResult

	// ProcessDocumentTask runs a utility action (summarize, translate,
	// checklist) over a Ready document's full text. The returned error is
	// non-nil only for an unknown action, which indicates a caller bug;
	// runtime failures are reported through the result's Error field.
	ProcessDocumentTask(ctx context.Context, documentID string, action string) (domain.QueryResult, error)
}
