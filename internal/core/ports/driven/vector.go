package driven

import "context"

// VectorIndex provides nearest-neighbour search over chunk embeddings.
// It is the vector half of the chunk store; chunk rows live in the
// DocumentStore. The index cannot participate in the relational
// store's transactions, so writes here are a best-effort mirror.
type VectorIndex interface {
	// Add inserts or replaces the vector for the given chunk ID.
	// Idempotent, which makes index rebuilds safe to re-run.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Delete removes a vector from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search finds up to k nearest neighbours to the query vector,
	// discarding candidates beyond maxDistance. Results are ranked by
	// ascending distance.
	Search(ctx context.Context, query []float32, k int, maxDistance float64) ([]VectorHit, error)

	// Count returns the number of vectors in the index.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Distance is the vector distance to the query; lower is closer.
	Distance float64
}
