package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagemem "github.com/veridoc-labs/veridoc/internal/adapters/driven/storage/memory"
	vectormem "github.com/veridoc-labs/veridoc/internal/adapters/driven/vector/memory"
	"github.com/veridoc-labs/veridoc/internal/chunker"
	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/extractors"
	"github.com/veridoc-labs/veridoc/internal/extractors/plaintext"
)

func pipelineFixture(t *testing.T, opts ...PipelineOption) (*Pipeline, *storagemem.DocumentStore, *vectormem.Index, *mockEmbedding) {
	t.Helper()

	docStore := storagemem.NewDocumentStore()
	index := vectormem.NewIndex()
	embedding := newMockEmbedding([]float32{0.1, 0.2, 0.3})
	registry := extractors.NewRegistry(plaintext.New())
	mirror := NewChunkMirror(docStore, index)

	p := NewPipeline(docStore, registry, embedding, mirror, opts...)
	return p, docStore, index, embedding
}

func pendingDoc(t *testing.T, docStore *storagemem.DocumentStore, contentType string) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		ID:          "doc-1",
		Title:       "Test Document",
		ContentType: contentType,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, docStore.SaveDocument(context.Background(), doc))
	return doc
}

func TestProcess_Success(t *testing.T) {
	p, docStore, index, _ := pipelineFixture(t)
	ctx := context.Background()
	doc := pendingDoc(t, docStore, "text/plain")

	err := p.Process(ctx, doc, []byte("First paragraph of the document.\n\nSecond paragraph of the document."))
	require.NoError(t, err)

	got, err := docStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.NotNil(t, got.ProcessedAt)
	assert.Empty(t, got.ErrorMessage)

	chunks, err := docStore.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Positions are a contiguous 0..N-1 sequence and every chunk has an
	// embedding mirrored into the index.
	indexSize, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(chunks), indexSize)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
		assert.NotEmpty(t, chunk.Embedding)
		assert.Equal(t, doc.ID, chunk.DocumentID)
	}
}

func TestProcess_EmptyExtractionFails(t *testing.T) {
	p, docStore, _, _ := pipelineFixture(t)
	ctx := context.Background()
	doc := pendingDoc(t, docStore, "text/plain")

	err := p.Process(ctx, doc, []byte("   \n\t  "))
	require.Error(t, err)

	got, err := docStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, msgNoContent, got.ErrorMessage)
	assert.Nil(t, got.ProcessedAt)

	// Nothing marked completed, nothing persisted.
	count, err := docStore.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestProcess_UnsupportedFormatFails(t *testing.T) {
	p, docStore, _, _ := pipelineFixture(t)
	ctx := context.Background()
	doc := pendingDoc(t, docStore, "application/x-unknown")

	err := p.Process(ctx, doc, []byte("content"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))

	got, err := docStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, msgExtractionFailed, got.ErrorMessage)
}

func TestProcess_RejectsNonPendingDocument(t *testing.T) {
	for _, status := range []domain.DocumentStatus{
		domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed,
	} {
		t.Run(string(status), func(t *testing.T) {
			p, docStore, _, _ := pipelineFixture(t)
			ctx := context.Background()

			doc := &domain.Document{
				ID:          "doc-1",
				Title:       "Test Document",
				ContentType: "text/plain",
				Status:      status,
				CreatedAt:   time.Now(),
			}
			require.NoError(t, docStore.SaveDocument(ctx, doc))

			err := p.Process(ctx, doc, []byte("Readable content."))
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)

			// The document keeps its status and nothing is persisted.
			got, err := docStore.GetDocument(ctx, doc.ID)
			require.NoError(t, err)
			assert.Equal(t, status, got.Status)

			count, err := docStore.CountChunks(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestProcess_EmbeddingFailurePropagates(t *testing.T) {
	p, docStore, _, embedding := pipelineFixture(t)
	embedding.err = errors.New("provider down")
	ctx := context.Background()
	doc := pendingDoc(t, docStore, "text/plain")

	err := p.Process(ctx, doc, []byte("Some content worth embedding."))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbedding))

	got, err := docStore.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, msgProcessingFailed, got.ErrorMessage)
}

func TestProcess_BatchesLargeDocuments(t *testing.T) {
	p, docStore, _, embedding := pipelineFixture(t,
		WithEmbedBatchSize(2),
		WithChunker(chunker.New(chunker.WithTargetTokens(10), chunker.WithOverlapTokens(2))),
	)
	ctx := context.Background()
	doc := pendingDoc(t, docStore, "text/plain")

	// Enough short paragraphs to force several chunks and batches.
	var paras []string
	for i := 0; i < 8; i++ {
		paras = append(paras, "alpha beta gamma delta epsilon zeta eta theta.")
	}
	err := p.Process(ctx, doc, []byte(strings.Join(paras, "\n\n")))
	require.NoError(t, err)

	chunks, err := docStore.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 2)
	assert.Equal(t, len(chunks), embedding.calls)
}
