package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// DefaultRetrieveLimit is the number of chunks retrieved per question
// when the caller does not say otherwise.
const DefaultRetrieveLimit = 5

// DefaultMaxDistance is the default distance ceiling beyond which a
// candidate is not considered relevant.
const DefaultMaxDistance = 0.75

// Retriever embeds a question and finds the nearest chunks, joined with
// their parent documents.
//
// Retrieval degrades instead of raising: a blank query, an embedding
// failure or an index failure all resolve to an empty result set,
// logged but never propagated. "Nothing to ground on" is a legitimate
// terminal state the caller must handle anyway.
type Retriever struct {
	docStore         driven.DocumentStore
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService

	defaultLimit       int
	defaultMaxDistance float64
}

// RetrieverOption configures the retriever.
type RetrieverOption func(*Retriever)

// WithRetrieveLimit sets the default result limit.
func WithRetrieveLimit(n int) RetrieverOption {
	return func(r *Retriever) {
		if n > 0 {
			r.defaultLimit = n
		}
	}
}

// WithMaxDistance sets the default distance ceiling.
func WithMaxDistance(d float64) RetrieverOption {
	return func(r *Retriever) {
		if d > 0 {
			r.defaultMaxDistance = d
		}
	}
}

// NewRetriever creates a retriever.
func NewRetriever(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	opts ...RetrieverOption,
) *Retriever {
	r := &Retriever{
		docStore:           docStore,
		vectorIndex:        vectorIndex,
		embeddingService:   embeddingService,
		defaultLimit:       DefaultRetrieveLimit,
		defaultMaxDistance: DefaultMaxDistance,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to opts.Limit chunks relevant to the query,
// ordered by non-decreasing distance. The nearest-neighbour search runs
// against the full corpus; DocumentIDs and CreatedAfter are applied as
// post-filters on the ranked candidate set, so filtered results may
// number fewer than the limit even when more relevant material exists
// outside the candidate window. A small-corpus trade-off: at larger
// sizes the filters belong inside the similarity query.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) []domain.RetrievedChunk {
	logger.Section("Retrieval")

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Blank query, returning no chunks")
		return nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = r.defaultLimit
	}
	maxDistance := opts.MaxDistance
	if maxDistance <= 0 {
		maxDistance = r.defaultMaxDistance
	}
	logger.Debug("Query: %q, limit: %d, max distance: %.2f", query, limit, maxDistance)

	embedding, err := r.embeddingService.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v (returning no chunks)", err)
		return nil
	}

	hits, err := r.vectorIndex.Search(ctx, embedding, limit, maxDistance)
	if err != nil {
		logger.Warn("Vector search failed: %v (returning no chunks)", err)
		return nil
	}
	logger.Debug("Vector search: %d hits", len(hits))

	results := r.hydrate(ctx, hits)
	results = filterByDocuments(results, opts.DocumentIDs)
	results = filterByCreatedAfter(results, opts.CreatedAfter)

	if len(results) > limit {
		results = results[:limit]
	}
	logger.Info("Retrieved %d chunks", len(results))

	return results
}

// hydrate joins vector hits with their chunk rows and parent documents,
// skipping hits whose rows have since been deleted.
func (r *Retriever) hydrate(ctx context.Context, hits []driven.VectorHit) []domain.RetrievedChunk {
	results := make([]domain.RetrievedChunk, 0, len(hits))

	for _, hit := range hits {
		chunk, err := r.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Stale index entry; the chunk row is gone.
				logger.Debug("Skipping stale vector hit %s", hit.ChunkID)
				continue
			}
			logger.Warn("Hydrating chunk %s failed: %v", hit.ChunkID, err)
			continue
		}

		doc, err := r.docStore.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Skipping chunk %s: parent document gone", hit.ChunkID)
				continue
			}
			logger.Warn("Hydrating document %s failed: %v", chunk.DocumentID, err)
			continue
		}

		results = append(results, domain.RetrievedChunk{
			Chunk:    *chunk,
			Document: *doc,
			Distance: hit.Distance,
		})
	}

	return results
}

// filterByDocuments restricts results to the given document IDs.
func filterByDocuments(results []domain.RetrievedChunk, documentIDs []string) []domain.RetrievedChunk {
	if len(documentIDs) == 0 {
		return results
	}

	allowed := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		allowed[id] = true
	}

	filtered := results[:0]
	for _, rc := range results {
		if allowed[rc.Document.ID] {
			filtered = append(filtered, rc)
		}
	}
	return filtered
}

// filterByCreatedAfter restricts results to chunks whose parent
// document was created after the given time.
func filterByCreatedAfter(results []domain.RetrievedChunk, after *time.Time) []domain.RetrievedChunk {
	if after == nil {
		return results
	}

	filtered := results[:0]
	for _, rc := range results {
		if rc.Document.CreatedAt.After(*after) {
			filtered = append(filtered, rc)
		}
	}
	return filtered
}
