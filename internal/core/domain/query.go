package domain

// ChatMessage is a single turn of conversation history, most-recent-last.
type ChatMessage struct {
	// Role is one of "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// QueryOptions configures a single query.
type QueryOptions struct {
	// DocumentScope restricts retrieval (and utility input) to one
	// document when non-empty.
	DocumentScope string

	// TopK overrides the configured final result size when positive.
	TopK int
}

// QueryState is the single mutable record threaded through the query
// pipeline. It is created when a query arrives, mutated by each pipeline
// stage, and discarded once the result is returned. It has no persistence
// beyond one query's lifetime.
type QueryState struct {
	// Query is the user's question.
	Query string

	// ChatHistory holds prior conversation turns, most-recent-last.
	ChatHistory []ChatMessage

	// Intent is the classified task category, set by the router.
	Intent Intent

	// DocumentScope restricts retrieval to one document when non-empty.
	DocumentScope string

	// DocumentText is the full assembled text for document-level utility
	// tasks. Empty in the interactive case.
	DocumentText string

	// TopK is the final result size for this query.
	TopK int

	// RetrievedChunks are the reranked chunks feeding the synthesizer.
	RetrievedChunks []RetrievedChunk

	// Answer is the generated (or fallback) answer text.
	Answer string

	// Citations point from the answer back to the retrieved chunks.
	Citations []Citation

	// Metadata collects free-form diagnostics from each stage.
	Metadata map[string]any

	// Err is the first recorded stage error, empty when none occurred.
	// Later stages tolerate an already-set error and still run.
	Err string
}

// NewQueryState initialises a state record for one query.
func NewQueryState(query string, history []ChatMessage) *QueryState {
	return &QueryState{
		Query:       query,
		ChatHistory: history,
		Metadata:    make(map[string]any),
	}
}

// SetError records a stage error unless one is already present.
// The first error wins: it identifies the stage that originally failed.
func (s *QueryState) SetError(msg string) {
	if s.Err == "" {
		s.Err = msg
	}
}

// QueryResult is the uniform response returned to the caller.
// It is always well-formed: Error is diagnostic only and never required
// for the caller to render a response.
type QueryResult struct {
	// Answer is the generated or fallback answer text.
	Answer string `json:"answer"`

	// Citations ground the answer in retrieved chunks. Empty for
	// utility intents and fallback answers.
	Citations []Citation `json:"citations"`

	// Metadata carries per-stage diagnostics.
	Metadata map[string]any `json:"metadata"`

	// Error is non-empty when a stage failed, for diagnostics.
	Error string `json:"error"`
}

// Result converts the final state into the caller-facing shape.
func (s *QueryState) Result() QueryResult {
	citations := s.Citations
	if citations == nil {
		citations = []Citation{}
	}
	metadata := s.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return QueryResult{
		Answer:    s.Answer,
		Citations: citations,
		Metadata:  metadata,
		Error:     s.Err,
	}
}
