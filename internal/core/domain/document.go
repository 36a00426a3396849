package domain

import "time"

// DocumentStatus represents a document's position in the ingestion lifecycle.
// Only chunks belonging to StatusReady documents are visible to retrieval.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusUploaded means the raw file has been received but not processed.
	StatusUploaded DocumentStatus = "UPLOADED"

	// StatusProcessing means text extraction, chunking and embedding are running.
	StatusProcessing DocumentStatus = "PROCESSING"

	// StatusReady means the document's chunks are available for retrieval.
	// Ready is terminal.
	StatusReady DocumentStatus = "READY"

	// StatusFailed means processing failed. A retry moves it back to Processing.
	StatusFailed DocumentStatus = "FAILED"
)

// statusTransitions defines the allowed edges of the status state machine:
// Uploaded → Processing → {Ready, Failed}; Failed → Processing (retry).
var statusTransitions = map[DocumentStatus][]DocumentStatus{
	StatusUploaded:   {StatusProcessing},
	StatusProcessing: {StatusReady, StatusFailed},
	StatusFailed:     {StatusProcessing},
	StatusReady:      {},
}

// IsValid returns true if the status is a known lifecycle state.
func (s DocumentStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo returns true if moving from s to target is an allowed edge.
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Document represents an ingested document referenced by the query core.
// Ingestion owns creation and status changes; the core only reads it.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title shown in citations.
	Title string

	// Status is the current lifecycle state.
	Status DocumentStatus

	// PageCount is the number of pages, when the source format has pages.
	PageCount int

	// CreatedAt is when the document was first uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed state.
	UpdatedAt time.Time
}

// TransitionTo moves the document to the target status if the edge is allowed.
// Returns ErrInvalidTransition otherwise.
func (d *Document) TransitionTo(target DocumentStatus) error {
	if !d.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	d.Status = target
	d.UpdatedAt = time.Now()
	return nil
}

// IsReady reports whether the document's chunks may be retrieved.
func (d *Document) IsReady() bool {
	return d.Status == StatusReady
}
