package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestContentTypes(t *testing.T) {
	types := New().ContentTypes()
	require.NotEmpty(t, types)
	assert.Contains(t, types, "application/pdf")
	assert.Len(t, types, 1)
}

func TestExtract(t *testing.T) {
	e := New(WithRunner(&mockRunner{output: []byte("  Extracted page text.\n")}))

	text, err := e.Extract(context.Background(), []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "Extracted page text.", text)
}

func TestExtract_EmptyInput(t *testing.T) {
	e := New(WithRunner(&mockRunner{output: []byte("never reached")}))

	_, err := e.Extract(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestExtract_ToolFailure(t *testing.T) {
	e := New(WithRunner(&mockRunner{err: errors.New("exit status 1")}))

	_, err := e.Extract(context.Background(), []byte("%PDF-1.4 fake"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Error(t, ErrPDFToolNotFound)
}
