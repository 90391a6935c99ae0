package driving

import (
	"context"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

// LibraryService manages the document corpus.
type LibraryService interface {
	// Upload stores a new pending document and schedules processing.
	// Returns the created document. Fails with
	// domain.ErrUnsupportedFormat when no extractor handles contentType.
	Upload(ctx context.Context, filename, contentType string, data []byte) (*domain.Document, error)

	// List returns all documents, newest first, including processing
	// status and any failure message.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a single document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Delete removes a document, its chunk rows and its vector index
	// entries in one logical operation.
	Delete(ctx context.Context, id string) error

	// RebuildIndex repairs the vector index from the relational chunk
	// rows. Idempotent; safe after a crash between the two stores.
	RebuildIndex(ctx context.Context) (RebuildReport, error)
}

// RebuildReport summarises an index repair run.
type RebuildReport struct {
	// ChunkRows is the number of chunk rows found in the relational store.
	ChunkRows int

	// Restored is the number of vectors written to the index.
	Restored int

	// IndexSize is the vector count after the rebuild.
	IndexSize int
}
