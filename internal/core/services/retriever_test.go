package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagemem "github.com/veridoc-labs/veridoc/internal/adapters/driven/storage/memory"
	vectormem "github.com/veridoc-labs/veridoc/internal/adapters/driven/vector/memory"
	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

// retrieverFixture seeds two documents with one chunk each: "near"
// (vector close to the query) and "far" (orthogonal).
func retrieverFixture(t *testing.T) (*Retriever, *mockEmbedding, *storagemem.DocumentStore) {
	t.Helper()
	ctx := context.Background()

	docStore := storagemem.NewDocumentStore()
	index := vectormem.NewIndex()
	embedding := newMockEmbedding([]float32{1, 0, 0})

	base := time.Now().Add(-time.Hour)
	require.NoError(t, docStore.SaveDocument(ctx, &domain.Document{
		ID: "doc-near", Title: "Near", Status: domain.StatusCompleted, CreatedAt: base,
	}))
	require.NoError(t, docStore.SaveDocument(ctx, &domain.Document{
		ID: "doc-far", Title: "Far", Status: domain.StatusCompleted, CreatedAt: base.Add(-24 * time.Hour),
	}))
	require.NoError(t, docStore.SaveChunks(ctx, []domain.Chunk{
		{ID: "chunk-near", DocumentID: "doc-near", Content: "near text", Position: 0},
		{ID: "chunk-far", DocumentID: "doc-far", Content: "far text", Position: 0},
	}))
	require.NoError(t, index.Add(ctx, "chunk-near", []float32{0.95, 0.05, 0}))
	require.NoError(t, index.Add(ctx, "chunk-far", []float32{0, 0.2, 0.98}))

	return NewRetriever(docStore, index, embedding, WithMaxDistance(2)), embedding, docStore
}

func TestRetrieve_BlankQueryNeverEmbeds(t *testing.T) {
	r, embedding, _ := retrieverFixture(t)

	assert.Empty(t, r.Retrieve(context.Background(), "", domain.RetrieveOptions{}))
	assert.Empty(t, r.Retrieve(context.Background(), "   \n", domain.RetrieveOptions{}))
	assert.Equal(t, 0, embedding.calls)
}

func TestRetrieve_EmbeddingFailureDegradesToEmpty(t *testing.T) {
	r, embedding, _ := retrieverFixture(t)
	embedding.err = errors.New("provider down")

	assert.Empty(t, r.Retrieve(context.Background(), "anything", domain.RetrieveOptions{}))
}

func TestRetrieve_OrderedByDistance(t *testing.T) {
	r, _, _ := retrieverFixture(t)

	results := r.Retrieve(context.Background(), "query", domain.RetrieveOptions{Limit: 10})
	require.Len(t, results, 2)

	assert.Equal(t, "chunk-near", results[0].Chunk.ID)
	assert.Equal(t, "chunk-far", results[1].Chunk.ID)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
	assert.Equal(t, "Near", results[0].Document.Title)
}

func TestRetrieve_MaxDistanceExcludes(t *testing.T) {
	r, _, _ := retrieverFixture(t)

	results := r.Retrieve(context.Background(), "query", domain.RetrieveOptions{
		Limit:       10,
		MaxDistance: 0.5,
	})
	require.Len(t, results, 1)
	assert.Equal(t, "chunk-near", results[0].Chunk.ID)
}

func TestRetrieve_DocumentIDPostFilter(t *testing.T) {
	r, _, _ := retrieverFixture(t)

	results := r.Retrieve(context.Background(), "query", domain.RetrieveOptions{
		Limit:       10,
		DocumentIDs: []string{"doc-far"},
	})
	require.Len(t, results, 1)
	assert.Equal(t, "doc-far", results[0].Document.ID)
}

func TestRetrieve_CreatedAfterPostFilter(t *testing.T) {
	r, _, _ := retrieverFixture(t)

	cutoff := time.Now().Add(-2 * time.Hour)
	results := r.Retrieve(context.Background(), "query", domain.RetrieveOptions{
		Limit:        10,
		CreatedAfter: &cutoff,
	})
	require.Len(t, results, 1)
	assert.Equal(t, "doc-near", results[0].Document.ID)
}

func TestRetrieve_SkipsStaleIndexEntries(t *testing.T) {
	r, _, docStore := retrieverFixture(t)

	// Delete the rows but leave the vectors behind, simulating a crash
	// between the two stores.
	require.NoError(t, docStore.DeleteDocument(context.Background(), "doc-near"))

	results := r.Retrieve(context.Background(), "query", domain.RetrieveOptions{Limit: 10})
	require.Len(t, results, 1)
	assert.Equal(t, "doc-far", results[0].Document.ID)
}

func TestRetrieve_LimitCapsResults(t *testing.T) {
	r, _, _ := retrieverFixture(t)

	results := r.Retrieve(context.Background(), "query", domain.RetrieveOptions{Limit: 1})
	assert.Len(t, results, 1)
}
