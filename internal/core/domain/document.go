package domain

import "time"

// DocumentStatus tracks a document through the processing lifecycle.
// Transitions: pending -> processing -> completed | failed. Both
// completed and failed are terminal; a failed document is never
// re-entered automatically.
type DocumentStatus string

const (
	// StatusPending means the document is uploaded but not yet processed.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing means a processing attempt is in flight.
	StatusProcessing DocumentStatus = "processing"

	// StatusCompleted means extraction, chunking and embedding succeeded.
	StatusCompleted DocumentStatus = "completed"

	// StatusFailed means processing aborted; ErrorMessage holds the reason.
	StatusFailed DocumentStatus = "failed"
)

// Valid reports whether s is a known document status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether the status machine permits moving
// from s to next.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// Document represents an uploaded document and its processing state.
// The processing pipeline owns all mutations after creation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title, derived from the filename.
	Title string

	// ContentType is the declared MIME type of the uploaded bytes.
	ContentType string

	// Status is the current position in the processing lifecycle.
	Status DocumentStatus

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time

	// ProcessedAt is set only when processing completes successfully.
	ProcessedAt *time.Time

	// ErrorMessage is set only when processing fails.
	ErrorMessage string
}

// Chunk represents a bounded, positioned, embedded slice of a
// document's extracted text. Chunks are immutable once created except
// for embedding backfill during index repair.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Position is the 0-based ordinal within the document. Positions
	// per document form a contiguous 0..N-1 sequence.
	Position int

	// TokenCount is the token count of Content under the chunker's
	// counting method.
	TokenCount int

	// Embedding is the vector representation. Every persisted chunk
	// carries exactly one embedding of the deployment's dimensionality.
	Embedding []float32
}
