package markdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

func TestExtractor_StripsFormatting(t *testing.T) {
	e := New()
	input := "# Title\n\nSome **bold** and *italic* text with a [link](https://example.com).\n\n" +
		"```go\nfunc ignored() {}\n```\n\n> quoted line\n\n- item one\n- item two\n"

	text, err := e.Extract(context.Background(), []byte(input))
	require.NoError(t, err)

	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Some bold and italic text with a link.")
	assert.Contains(t, text, "quoted line")
	assert.Contains(t, text, "item one")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "```")
	assert.NotContains(t, text, "https://example.com")
	assert.NotContains(t, text, "func ignored")
}

func TestExtractor_PreservesParagraphBreaks(t *testing.T) {
	e := New()

	text, err := e.Extract(context.Background(), []byte("first para\n\n\n\nsecond para"))
	require.NoError(t, err)
	assert.Equal(t, "first para\n\nsecond para", text)
}

func TestExtractor_EmptyInput(t *testing.T) {
	e := New()

	_, err := e.Extract(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyDocument))
}

func TestExtractTitle(t *testing.T) {
	e := New()
	assert.Equal(t, "My Document", e.ExtractTitle([]byte("intro line\n# My Document\nbody")))
	assert.Equal(t, "", e.ExtractTitle([]byte("no headings here\njust text")))
}
