package domain

import (
	"math"
	"time"
)

// Citation maps a generated-answer reference back to the exact chunk
// and document claimed to support it. Citations are produced fresh per
// answer and never persisted independently.
type Citation struct {
	// ChunkID is the supporting chunk.
	ChunkID string

	// DocumentID is the chunk's parent document.
	DocumentID string

	// DocumentTitle is the parent document's title for display.
	DocumentTitle string

	// Relevance is a display-oriented score in [0,1] derived from
	// vector distance.
	Relevance float64

	// Position is the chunk's ordinal within its document.
	Position int
}

// EmptyContextType classifies why retrieval produced nothing to
// ground an answer on.
type EmptyContextType string

const (
	// EmptyNoDocuments means the corpus holds no completed documents.
	EmptyNoDocuments EmptyContextType = "no_documents"

	// EmptyNoRecentDocuments means a recency filter excluded everything.
	EmptyNoRecentDocuments EmptyContextType = "no_recent_documents"

	// EmptyNoRelevantChunks means no chunk fell within the distance
	// threshold.
	EmptyNoRelevantChunks EmptyContextType = "no_relevant_chunks"
)

// EmptyContext records an empty retrieval outcome on an answer.
type EmptyContext struct {
	// Type is the classification of the empty result.
	Type EmptyContextType
}

// Answer is the result of asking a question against the corpus.
type Answer struct {
	// Text is the generated answer with citation markers renumbered
	// sequentially by first appearance.
	Text string

	// Citations are the chunks actually referenced by Text, ordered by
	// first appearance. Always a subset of the retrieved chunks.
	Citations []Citation

	// EmptyContext is set when retrieval produced no grounding.
	EmptyContext *EmptyContext

	// Diagnostic carries an internal error description when generation
	// failed and Text is an apology. Never shown as the answer itself.
	Diagnostic string
}

// RetrievedChunk is a ranked retrieval hit joined with its parent
// document.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Document is the chunk's parent document.
	Document Document

	// Distance is the vector distance between query and chunk; lower
	// is closer.
	Distance float64
}

// Citation builds the transient citation record for a retrieval hit.
func (r RetrievedChunk) Citation() Citation {
	return Citation{
		ChunkID:       r.Chunk.ID,
		DocumentID:    r.Document.ID,
		DocumentTitle: r.Document.Title,
		Relevance:     RelevanceFromDistance(r.Distance),
		Position:      r.Chunk.Position,
	}
}

// RetrieveOptions configures a retrieval request.
type RetrieveOptions struct {
	// Limit is the maximum number of chunks to return. Defaults to 5.
	Limit int

	// MaxDistance is the distance ceiling; candidates beyond it are
	// not relevant. Zero means the configured default applies.
	MaxDistance float64

	// DocumentIDs restricts results to the given documents. Applied as
	// a post-filter on the ranked candidate set.
	DocumentIDs []string

	// CreatedAfter restricts results to chunks whose parent document
	// was created after this time. Applied as a post-filter.
	CreatedAfter *time.Time
}

// RelevanceFromDistance converts a vector distance to the display
// score clamp(0, 1 - distance/2, 1), rounded to two decimals.
func RelevanceFromDistance(distance float64) float64 {
	r := 1 - distance/2
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	return math.Round(r*100) / 100
}
