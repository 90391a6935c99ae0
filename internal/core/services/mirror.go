package services

import (
	"context"
	"fmt"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// ChunkMirror keeps the relational chunk rows and the vector index in
// step. The two stores cannot share a transaction, so every write is a
// best-effort write-through: rows first (the source of truth), then
// vectors. A crash between the two leaves the index behind the rows,
// which Rebuild repairs idempotently.
type ChunkMirror struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
}

// NewChunkMirror creates a chunk mirror over the two stores.
func NewChunkMirror(docStore driven.DocumentStore, vectorIndex driven.VectorIndex) *ChunkMirror {
	return &ChunkMirror{
		docStore:    docStore,
		vectorIndex: vectorIndex,
	}
}

// SaveChunks persists chunk rows and mirrors their embeddings into the
// vector index. A row write failure is fatal; a vector write failure is
// logged and left for Rebuild, since the rows can regenerate the index
// but not the other way round.
func (m *ChunkMirror) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if err := m.docStore.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunk rows: %w", err)
	}

	missed := 0
	for _, chunk := range chunks {
		if err := m.vectorIndex.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			logger.Warn("Vector write for chunk %s failed: %v", chunk.ID, err)
			missed++
		}
	}
	if missed > 0 {
		logger.Warn("Vector index is missing %d of %d chunks; run a rebuild to repair", missed, len(chunks))
	}

	return nil
}

// DeleteDocument removes a document's vectors and then its rows. Vector
// deletions that fail leave stale index entries, which retrieval
// already skips during hydration and Rebuild clears for good.
func (m *ChunkMirror) DeleteDocument(ctx context.Context, documentID string) error {
	chunks, err := m.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return fmt.Errorf("list chunks for %s: %w", documentID, err)
	}

	for _, chunk := range chunks {
		if err := m.vectorIndex.Delete(ctx, chunk.ID); err != nil {
			logger.Warn("Vector delete for chunk %s failed: %v", chunk.ID, err)
		}
	}

	if err := m.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}

	return nil
}

// Rebuild re-adds every chunk row's embedding to the vector index and
// reports the resulting counts. Add is idempotent, so running this
// against a healthy index is harmless; running it after a crash between
// the two stores restores the missing vectors.
func (m *ChunkMirror) Rebuild(ctx context.Context) (rows, restored, indexSize int, err error) {
	logger.Section("Index Rebuild")

	chunks, err := m.docStore.ListChunks(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("list chunk rows: %w", err)
	}
	rows = len(chunks)
	logger.Debug("Found %d chunk rows", rows)

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			logger.Warn("Chunk %s has no embedding, skipping", chunk.ID)
			continue
		}
		if err := m.vectorIndex.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return rows, restored, 0, fmt.Errorf("restore vector for chunk %s: %w", chunk.ID, err)
		}
		restored++
	}

	indexSize, err = m.vectorIndex.Count(ctx)
	if err != nil {
		return rows, restored, 0, fmt.Errorf("count index: %w", err)
	}

	if indexSize != rows {
		logger.Warn("Index size %d differs from chunk rows %d after rebuild", indexSize, rows)
	}
	logger.Info("Rebuild complete: %d rows, %d restored, index size %d", rows, restored, indexSize)

	return rows, restored, indexSize, nil
}

// CheckConsistency compares the row count with the index size.
func (m *ChunkMirror) CheckConsistency(ctx context.Context) (rows, indexSize int, err error) {
	rows, err = m.docStore.CountChunks(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("count chunk rows: %w", err)
	}
	indexSize, err = m.vectorIndex.Count(ctx)
	if err != nil {
		return rows, 0, fmt.Errorf("count index: %w", err)
	}
	return rows, indexSize, nil
}
