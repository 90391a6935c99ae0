package plaintext

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

func TestExtractor_Extract(t *testing.T) {
	e := New()

	text, err := e.Extract(context.Background(), []byte("  hello world\nsecond line  \n"))
	require.NoError(t, err)
	assert.Equal(t, "hello world\nsecond line", text)
}

func TestExtractor_EmptyInput(t *testing.T) {
	e := New()

	_, err := e.Extract(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyDocument))
}

func TestExtractor_InvalidUTF8Replaced(t *testing.T) {
	e := New()

	text, err := e.Extract(context.Background(), []byte{'o', 'k', ' ', 0xff, 0xfe, ' ', 'e', 'n', 'd'})
	require.NoError(t, err)
	assert.Contains(t, text, "ok")
	assert.Contains(t, text, "end")
}

func TestExtractor_ContentTypes(t *testing.T) {
	assert.Contains(t, New().ContentTypes(), "text/plain")
}
