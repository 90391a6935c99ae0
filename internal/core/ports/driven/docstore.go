package driven

import (
	"context"
	"time"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

// DocumentStore persists documents and chunk rows.
// Backed by SQLite for metadata storage. The parallel vector index is
// a separate store (VectorIndex); the two are mirrored best-effort by
// the services layer, never inside one transaction.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunk rows.
	DeleteDocument(ctx context.Context, id string) error

	// UpdateStatus moves a document through the processing lifecycle.
	// processedAt is set on completion, errorMessage on failure.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errorMessage string, processedAt *time.Time) error

	// SaveChunks stores chunk rows for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ListChunks returns every chunk row in the store. Used by the
	// index rebuild repair operation.
	ListChunks(ctx context.Context) ([]domain.Chunk, error)

	// CountDocuments returns the number of documents, optionally
	// restricted to those created after a given time.
	CountDocuments(ctx context.Context, createdAfter *time.Time) (int, error)

	// CountChunks returns the number of chunk rows.
	CountChunks(ctx context.Context) (int, error)
}
