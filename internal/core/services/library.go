package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driving"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// Ensure Library implements the interface.
var _ driving.LibraryService = (*Library)(nil)

// Library manages the document corpus: uploads, listings, deletion and
// index repair. Processing runs asynchronously through the worker pool;
// the document ID is the scheduling key, so a document never has two
// processing attempts in flight.
type Library struct {
	docStore   driven.DocumentStore
	extractors driven.ExtractorRegistry
	mirror     *ChunkMirror
	pipeline   *Pipeline
	pool       *WorkerPool

	retryAttempts int
	retryDelay    time.Duration
}

// LibraryOption configures the library.
type LibraryOption func(*Library)

// WithProcessingRetries sets how many processing attempts each upload
// gets and the delay between them. One attempt means no retries.
func WithProcessingRetries(attempts int, delay time.Duration) LibraryOption {
	return func(l *Library) {
		if attempts >= 1 {
			l.retryAttempts = attempts
		}
		if delay > 0 {
			l.retryDelay = delay
		}
	}
}

// NewLibrary creates a library service.
func NewLibrary(
	docStore driven.DocumentStore,
	extractors driven.ExtractorRegistry,
	mirror *ChunkMirror,
	pipeline *Pipeline,
	pool *WorkerPool,
	opts ...LibraryOption,
) *Library {
	l := &Library{
		docStore:      docStore,
		extractors:    extractors,
		mirror:        mirror,
		pipeline:      pipeline,
		pool:          pool,
		retryAttempts: 1,
		retryDelay:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Upload stores a new pending document and schedules its processing.
// Unsupported content types and empty uploads are rejected before
// anything is persisted.
func (l *Library) Upload(ctx context.Context, filename, contentType string, data []byte) (*domain.Document, error) {
	logger.Section("Upload")
	logger.Debug("File: %s (%s, %d bytes)", filename, contentType, len(data))

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", domain.ErrInvalidInput)
	}

	extractor, err := l.extractors.ForContentType(contentType)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:          uuid.New().String(),
		Title:       l.deriveTitle(extractor, filename, data),
		ContentType: contentType,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now(),
	}

	if err := l.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	task := WithRetry(l.retryAttempts, l.retryDelay, func(taskCtx context.Context) error {
		return l.pipeline.Process(taskCtx, doc, data)
	})

	if err := l.pool.Submit(doc.ID, task); err != nil {
		return nil, fmt.Errorf("schedule processing: %w", err)
	}

	logger.Info("Document %s uploaded as %q, processing scheduled", doc.ID, doc.Title)
	return doc, nil
}

// List returns all documents, newest first.
func (l *Library) List(ctx context.Context) ([]domain.Document, error) {
	return l.docStore.ListDocuments(ctx)
}

// Get retrieves a single document.
func (l *Library) Get(ctx context.Context, id string) (*domain.Document, error) {
	return l.docStore.GetDocument(ctx, id)
}

// Delete removes a document, its chunk rows and its vector entries.
func (l *Library) Delete(ctx context.Context, id string) error {
	if _, err := l.docStore.GetDocument(ctx, id); err != nil {
		return err
	}

	if err := l.mirror.DeleteDocument(ctx, id); err != nil {
		return err
	}

	logger.Info("Document %s deleted", id)
	return nil
}

// RebuildIndex repairs the vector index from the chunk rows.
func (l *Library) RebuildIndex(ctx context.Context) (driving.RebuildReport, error) {
	rows, restored, indexSize, err := l.mirror.Rebuild(ctx)
	if err != nil {
		return driving.RebuildReport{}, err
	}
	return driving.RebuildReport{
		ChunkRows: rows,
		Restored:  restored,
		IndexSize: indexSize,
	}, nil
}

// deriveTitle prefers a title embedded in the document itself, falling
// back to a cleaned-up filename.
func (l *Library) deriveTitle(extractor driven.Extractor, filename string, data []byte) string {
	if te, ok := extractor.(driven.TitleExtractor); ok {
		if title := strings.TrimSpace(te.ExtractTitle(data)); title != "" {
			return title
		}
	}
	return titleFromFilename(filename)
}

// titleFromFilename strips the extension and de-mangles separators.
func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	return name
}
