// Package memory provides an in-memory VectorIndex with brute-force
// cosine search. Used in tests and as a fallback when no index path is
// configured; contents are lost on exit.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index keeps vectors in a map and searches them exhaustively.
// Distance is cosine distance (1 - cosine similarity), matching the
// persistent index so thresholds carry over.
type Index struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{vectors: make(map[string][]float32)}
}

// Add inserts or replaces a vector. Idempotent.
func (idx *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if chunkID == "" || len(embedding) == 0 {
		return domain.ErrInvalidInput
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	stored := make([]float32, len(embedding))
	copy(stored, embedding)
	idx.vectors[chunkID] = stored
	return nil
}

// Delete removes a vector. Deleting an absent ID is not an error.
func (idx *Index) Delete(_ context.Context, chunkID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.vectors, chunkID)
	return nil
}

// Search returns up to k nearest neighbours within maxDistance, ranked
// by ascending distance.
func (idx *Index) Search(_ context.Context, query []float32, k int, maxDistance float64) ([]driven.VectorHit, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(idx.vectors))
	for id, vec := range idx.vectors {
		if len(vec) != len(query) {
			continue
		}
		d := cosineDistance(query, vec)
		if d > maxDistance {
			continue
		}
		hits = append(hits, driven.VectorHit{ChunkID: id, Distance: d})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of vectors.
func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors), nil
}

// Close releases nothing; it exists to satisfy the interface.
func (idx *Index) Close() error {
	return nil
}

// cosineDistance computes 1 - cosine similarity. Zero vectors are
// maximally distant.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
