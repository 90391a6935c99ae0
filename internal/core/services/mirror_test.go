package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagemem "github.com/veridoc-labs/veridoc/internal/adapters/driven/storage/memory"
	vectormem "github.com/veridoc-labs/veridoc/internal/adapters/driven/vector/memory"
	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

func mirrorFixture() (*ChunkMirror, *storagemem.DocumentStore, *vectormem.Index) {
	docStore := storagemem.NewDocumentStore()
	index := vectormem.NewIndex()
	return NewChunkMirror(docStore, index), docStore, index
}

func sampleChunks(documentID string, n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:         documentID + "-c" + string(rune('a'+i)),
			DocumentID: documentID,
			Content:    "content",
			Position:   i,
			Embedding:  []float32{float32(i), 1, 0},
		}
	}
	return chunks
}

func TestSaveChunks_WritesBothStores(t *testing.T) {
	m, docStore, index := mirrorFixture()
	ctx := context.Background()

	require.NoError(t, m.SaveChunks(ctx, sampleChunks("d1", 3)))

	rows, err := docStore.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	size, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func TestDeleteDocument_RemovesVectorsAndRows(t *testing.T) {
	m, docStore, index := mirrorFixture()
	ctx := context.Background()

	require.NoError(t, docStore.SaveDocument(ctx, &domain.Document{ID: "d1", Status: domain.StatusCompleted}))
	require.NoError(t, m.SaveChunks(ctx, sampleChunks("d1", 2)))

	require.NoError(t, m.DeleteDocument(ctx, "d1"))

	rows, err := docStore.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, rows)

	size, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRebuild_RepairsMissingVectors(t *testing.T) {
	m, docStore, index := mirrorFixture()
	ctx := context.Background()

	// Simulate a crash between the row write and the vector write:
	// rows exist, index is empty.
	require.NoError(t, docStore.SaveChunks(ctx, sampleChunks("d1", 3)))

	rows, restored, indexSize, err := m.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, restored)
	assert.Equal(t, 3, indexSize)

	size, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func TestRebuild_IsIdempotent(t *testing.T) {
	m, _, _ := mirrorFixture()
	ctx := context.Background()

	require.NoError(t, m.SaveChunks(ctx, sampleChunks("d1", 2)))

	for i := 0; i < 3; i++ {
		rows, restored, indexSize, err := m.Rebuild(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, rows)
		assert.Equal(t, 2, restored)
		assert.Equal(t, 2, indexSize)
	}
}

func TestCheckConsistency(t *testing.T) {
	m, docStore, _ := mirrorFixture()
	ctx := context.Background()

	require.NoError(t, docStore.SaveChunks(ctx, sampleChunks("d1", 2)))

	rows, indexSize, err := m.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Zero(t, indexSize)
}
