package cli

import (
	"context"
	"time"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driving"
)

type mockAskService struct {
	answer   *domain.Answer
	err      error
	lastOpts domain.RetrieveOptions
}

var _ driving.AskService = (*mockAskService)(nil)

func (m *mockAskService) Ask(_ context.Context, question string, opts domain.RetrieveOptions) (*domain.Answer, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{
		Text: "Vacation allowance is 25 days. [1]",
		Citations: []domain.Citation{
			{ChunkID: "chunk-1", DocumentID: "doc-1", DocumentTitle: "Employee Handbook", Relevance: 0.91, Position: 0},
		},
	}, nil
}

type mockLibraryService struct {
	docs      []domain.Document
	uploaded  *domain.Document
	getDoc    *domain.Document
	deleteErr error
	report    driving.RebuildReport
}

var _ driving.LibraryService = (*mockLibraryService)(nil)

func (m *mockLibraryService) Upload(_ context.Context, filename, contentType string, data []byte) (*domain.Document, error) {
	doc := &domain.Document{
		ID:          "doc-1",
		Title:       filename,
		ContentType: contentType,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now(),
	}
	m.uploaded = doc
	return doc, nil
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockLibraryService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.getDoc != nil {
		return m.getDoc, nil
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockLibraryService) Delete(_ context.Context, id string) error {
	return m.deleteErr
}

func (m *mockLibraryService) RebuildIndex(_ context.Context) (driving.RebuildReport, error) {
	return m.report, nil
}

// setupTestServices swaps in mock services and returns a restore func.
func setupTestServices() func() {
	oldAsk := askService
	oldLibrary := libraryService
	oldWaiter := processingWaiter

	askService = &mockAskService{}
	libraryService = &mockLibraryService{}
	processingWaiter = nil

	return func() {
		askService = oldAsk
		libraryService = oldLibrary
		processingWaiter = oldWaiter
	}
}
