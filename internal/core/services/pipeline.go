package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veridoc-labs/veridoc/internal/chunker"
	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// DefaultEmbedBatchSize bounds the number of texts per embedding
// request. Batches for one document run sequentially; this is a cost
// and latency choice, not a correctness requirement.
const DefaultEmbedBatchSize = 50

// User-facing failure messages recorded on the document. Extraction
// problems get a specific message; everything else gets the generic one
// with the step that failed.
const (
	msgExtractionFailed = "could not extract readable text from the document"
	msgNoContent        = "the document contains no text to index"
	msgProcessingFailed = "processing failed"
)

// Pipeline processes one uploaded document: extract, chunk, batch-embed,
// persist. It owns the document's status transitions; the first failing
// step aborts the rest and drives the document to failed. Exactly one
// attempt runs per invocation; a failed document is only re-entered by
// an explicit new invocation, never from inside.
type Pipeline struct {
	docStore         driven.DocumentStore
	extractors       driven.ExtractorRegistry
	embeddingService driven.EmbeddingService
	mirror           *ChunkMirror
	chunker          *chunker.Chunker

	batchSize int
}

// PipelineOption configures the pipeline.
type PipelineOption func(*Pipeline)

// WithEmbedBatchSize sets the embedding batch size.
func WithEmbedBatchSize(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithChunker replaces the default chunker configuration.
func WithChunker(c *chunker.Chunker) PipelineOption {
	return func(p *Pipeline) {
		if c != nil {
			p.chunker = c
		}
	}
}

// NewPipeline creates a processing pipeline.
func NewPipeline(
	docStore driven.DocumentStore,
	extractors driven.ExtractorRegistry,
	embeddingService driven.EmbeddingService,
	mirror *ChunkMirror,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		docStore:         docStore,
		extractors:       extractors,
		embeddingService: embeddingService,
		mirror:           mirror,
		chunker:          chunker.New(),
		batchSize:        DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the pipeline for one document. The original error is
// returned so the scheduler decides retry policy; the status transition
// to failed has already happened by then.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document, data []byte) error {
	logger.Section("Document Processing")
	logger.Info("Processing %s (%s, %d bytes)", doc.ID, doc.ContentType, len(data))

	// Only a pending document may enter processing; completed and
	// failed documents are never re-entered.
	if !doc.Status.CanTransitionTo(domain.StatusProcessing) {
		return fmt.Errorf("%w: document %s is %s", domain.ErrInvalidTransition, doc.ID, doc.Status)
	}

	if err := p.docStore.UpdateStatus(ctx, doc.ID, domain.StatusProcessing, "", nil); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	// Extract
	text, err := p.extract(ctx, doc, data)
	if err != nil {
		return p.fail(ctx, doc.ID, err)
	}

	// Chunk
	pieces := p.chunker.Chunk(text)
	if len(pieces) == 0 {
		// Never mark a chunkless document completed.
		return p.fail(ctx, doc.ID, fmt.Errorf("%w: chunker produced no chunks", domain.ErrEmptyDocument))
	}
	logger.Debug("Chunked into %d pieces", len(pieces))

	// Batch-embed
	chunks, err := p.embed(ctx, doc.ID, pieces)
	if err != nil {
		return p.fail(ctx, doc.ID, err)
	}

	// Persist
	if err := p.mirror.SaveChunks(ctx, chunks); err != nil {
		return p.fail(ctx, doc.ID, err)
	}

	now := time.Now()
	if err := p.docStore.UpdateStatus(ctx, doc.ID, domain.StatusCompleted, "", &now); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	logger.Info("Document %s completed: %d chunks", doc.ID, len(chunks))
	return nil
}

// extract selects the extractor for the declared content type and runs
// it, treating empty output as a failure.
func (p *Pipeline) extract(ctx context.Context, doc *domain.Document, data []byte) (string, error) {
	extractor, err := p.extractors.ForContentType(doc.ContentType)
	if err != nil {
		return "", err
	}

	text, err := extractor.Extract(ctx, data)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: extraction produced no text", domain.ErrEmptyDocument)
	}

	logger.Debug("Extracted %d characters", len(text))
	return text, nil
}

// embed turns chunk pieces into persisted-ready chunks, embedding in
// fixed-size sequential batches.
func (p *Pipeline) embed(ctx context.Context, documentID string, pieces []chunker.Piece) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    piece.Text,
			Position:   i,
			TokenCount: piece.TokenCount,
		}
	}

	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-start)
		for i := start; i < end; i++ {
			texts[i-start] = chunks[i].Content
		}

		logger.Debug("Embedding batch %d..%d of %d", start, end-1, len(chunks))
		vectors, err := p.embeddingService.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d: %v", domain.ErrEmbedding, start/p.batchSize, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: batch %d returned %d vectors for %d texts",
				domain.ErrEmbedding, start/p.batchSize, len(vectors), len(texts))
		}

		for i := start; i < end; i++ {
			chunks[i].Embedding = vectors[i-start]
		}
	}

	return chunks, nil
}

// fail drives the document to failed with a user-facing message and
// propagates the original error to the caller.
func (p *Pipeline) fail(ctx context.Context, documentID string, cause error) error {
	logger.Warn("Document %s failed: %v", documentID, cause)

	if err := p.docStore.UpdateStatus(ctx, documentID, domain.StatusFailed, failureMessage(cause), nil); err != nil {
		logger.Warn("Could not record failure for %s: %v", documentID, err)
	}

	return cause
}

// failureMessage maps an error to the message shown in listings.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyDocument):
		return msgNoContent
	case errors.Is(err, domain.ErrExtraction), errors.Is(err, domain.ErrUnsupportedFormat):
		return msgExtractionFailed
	default:
		return msgProcessingFailed
	}
}
