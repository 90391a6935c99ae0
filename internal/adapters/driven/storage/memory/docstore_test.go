package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

func testDocument(id string, createdAt time.Time) *domain.Document {
	return &domain.Document{
		ID:          id,
		Title:       "Doc " + id,
		ContentType: "text/plain",
		Status:      domain.StatusPending,
		CreatedAt:   createdAt,
	}
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	doc := testDocument("d1", time.Now())
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)

	_, err = s.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListNewestFirst(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, s.SaveDocument(ctx, testDocument("old", base.Add(-time.Hour))))
	require.NoError(t, s.SaveDocument(ctx, testDocument("new", base)))

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "old", docs[1].ID)
}

func TestDocumentStore_UpdateStatus(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, testDocument("d1", time.Now())))

	now := time.Now()
	require.NoError(t, s.UpdateStatus(ctx, "d1", domain.StatusCompleted, "", &now))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.ProcessedAt)

	require.NoError(t, s.UpdateStatus(ctx, "d1", domain.StatusFailed, "boom", nil))
	got, err = s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "boom", got.ErrorMessage)
	assert.Nil(t, got.ProcessedAt)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", domain.StatusFailed, "", nil), domain.ErrNotFound)
}

func TestDocumentStore_UpdateStatusRejectsUnknownStatus(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, testDocument("d1", time.Now())))

	err := s.UpdateStatus(ctx, "d1", domain.DocumentStatus("archived"), "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestDocumentStore_ChunksOrderedByPosition(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{
		{ID: "c2", DocumentID: "d1", Position: 1, Content: "second"},
		{ID: "c1", DocumentID: "d1", Position: 0, Content: "first"},
		{ID: "x1", DocumentID: "d2", Position: 0, Content: "other doc"},
	}))

	chunks, err := s.GetChunks(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "c1", chunks[0].ID)
	assert.Equal(t, "c2", chunks[1].ID)
}

func TestDocumentStore_DeleteCascades(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, testDocument("d1", time.Now())))
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "d1", Position: 0},
		{ID: "x1", DocumentID: "d2", Position: 0},
	}))

	require.NoError(t, s.DeleteDocument(ctx, "d1"))

	_, err := s.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetChunk(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Unrelated chunks survive.
	_, err = s.GetChunk(ctx, "x1")
	assert.NoError(t, err)
}

func TestDocumentStore_CountDocuments(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, s.SaveDocument(ctx, testDocument("old", base.Add(-2*time.Hour))))
	require.NoError(t, s.SaveDocument(ctx, testDocument("new", base)))

	total, err := s.CountDocuments(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	cutoff := base.Add(-time.Hour)
	recent, err := s.CountDocuments(ctx, &cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, recent)
}
