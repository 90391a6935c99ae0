// Package chromem provides a persistent vector index backed by chromem-go.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultCollection is the collection name used for chunk embeddings.
const DefaultCollection = "chunks"

// Config holds configuration for the chromem-backed vector index.
type Config struct {
	// Path is the directory for persistent storage (required).
	Path string

	// Compress enables gzip compression for stored data.
	Compress bool

	// Collection is the collection name (default: chunks).
	Collection string
}

// Index stores chunk embeddings in an embedded chromem-go database.
// chromem-go is pure Go with no external service, persists to disk, and
// always performs exact (brute-force) cosine search.
type Index struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
}

// NewIndex opens (or creates) a persistent chromem database at cfg.Path.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("chromem: path is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	if err := os.MkdirAll(cfg.Path, 0o700); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := chromemgo.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("open chromem database: %w", err)
	}

	// All vectors arrive precomputed; the embedding func must never run.
	// Passing one explicitly also keeps chromem from defaulting to its
	// OpenAI embedder.
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", cfg.Collection, err)
	}

	return &Index{db: db, collection: collection}, nil
}

func rejectEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("index only accepts precomputed embeddings")
}

// Add inserts or replaces the vector for the given chunk ID.
func (i *Index) Add(ctx context.Context, chunkID string, embedding []float32) error {
	if chunkID == "" {
		return fmt.Errorf("chromem: chunk ID is required")
	}
	if len(embedding) == 0 {
		return fmt.Errorf("chromem: embedding is required")
	}

	err := i.collection.AddDocuments(ctx, []chromemgo.Document{
		{ID: chunkID, Embedding: embedding},
	}, 1)
	if err != nil {
		return fmt.Errorf("add vector %s: %w", chunkID, err)
	}

	return nil
}

// Delete removes a vector from the index. Deleting an absent ID is not
// an error.
func (i *Index) Delete(ctx context.Context, chunkID string) error {
	if chunkID == "" {
		return fmt.Errorf("chromem: chunk ID is required")
	}

	if err := i.collection.Delete(ctx, nil, nil, chunkID); err != nil {
		return fmt.Errorf("delete vector %s: %w", chunkID, err)
	}

	return nil
}

// Search finds up to k nearest neighbours to the query vector. chromem
// reports cosine similarity; distance is 1 - similarity so lower is
// closer, matching the rest of the retrieval path.
func (i *Index) Search(ctx context.Context, query []float32, k int, maxDistance float64) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	// chromem requires nResults <= document count.
	count := i.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := i.collection.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(results))
	for _, r := range results {
		distance := 1 - float64(r.Similarity)
		if distance > maxDistance {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:  r.ID,
			Distance: distance,
		})
	}

	return hits, nil
}

// Count returns the number of vectors in the index.
func (i *Index) Count(ctx context.Context) (int, error) {
	return i.collection.Count(), nil
}

// Close releases resources. chromem persists writes as they happen, so
// there is nothing to flush.
func (i *Index) Close() error {
	return nil
}
