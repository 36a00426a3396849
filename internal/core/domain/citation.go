package domain

// SnippetMaxLen is the maximum citation snippet length in characters.
// Longer chunk texts are truncated with an ellipsis marker.
const SnippetMaxLen = 200

// Citation points from a generated answer back to the source chunk.
// Citations are derived 1:1 from the chunks supplied to the model;
// they never reference a chunk outside the reranked set.
type Citation struct {
	// DocumentID is the source document.
	DocumentID string `json:"document_id"`

	// DocumentTitle is the source document's title.
	DocumentTitle string `json:"document_title"`

	// ChunkIndex is the cited chunk's position within the document.
	ChunkIndex int `json:"chunk_index"`

	// Page is the source page number, when known.
	Page *int `json:"page,omitempty"`

	// Snippet is the first part of the chunk text, at most SnippetMaxLen
	// characters plus an ellipsis when truncated.
	Snippet string `json:"snippet"`
}

// NewCitation builds a citation for a chunk with the given document title.
func NewCitation(chunk Chunk, documentTitle string) Citation {
	return Citation{
		DocumentID:    chunk.DocumentID,
		DocumentTitle: documentTitle,
		ChunkIndex:    chunk.Index,
		Page:          chunk.Page,
		Snippet:       Snippet(chunk.Text),
	}
}

// Snippet truncates text to SnippetMaxLen characters, appending "..."
// when cut. Truncation is rune-aware so Persian text is never split
// mid-character.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetMaxLen {
		return text
	}
	return string(runes[:SnippetMaxLen]) + "..."
}
