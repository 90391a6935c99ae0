// Package plaintext extracts text from plain text documents.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// ContentTypes returns the content types this extractor handles.
func (e *Extractor) ContentTypes() []string {
	return []string{"text/plain", "text/csv"}
}

// Extract returns the document bytes as text. Invalid UTF-8 sequences
// are replaced rather than rejected, so mostly-text files still index.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyDocument
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}

	return strings.TrimSpace(text), nil
}
