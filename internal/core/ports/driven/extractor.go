package driven

import "context"

// Extractor converts raw document bytes of a specific format into
// plain text. One implementation exists per supported content type;
// selection happens through a registry keyed on the declared type.
type Extractor interface {
	// ContentTypes returns the MIME types this extractor handles.
	ContentTypes() []string

	// Extract returns the plain text content of the document.
	// Fails with domain.ErrExtraction (wrapped) on corrupt input.
	Extract(ctx context.Context, data []byte) (string, error)
}

// TitleExtractor is an optional interface for extractors that can read
// a title embedded in the document itself (a markdown heading, DOCX
// core properties). Callers fall back to the filename when the
// extractor does not implement it or returns "".
type TitleExtractor interface {
	// ExtractTitle returns the document's embedded title, or "".
	ExtractTitle(data []byte) string
}

// ExtractorRegistry selects an extractor for a declared content type.
// Unknown types reject with domain.ErrUnsupportedFormat rather than
// falling through to a default.
type ExtractorRegistry interface {
	// ForContentType returns the extractor registered for the type.
	ForContentType(contentType string) (Extractor, error)

	// ContentTypes returns all registered content types.
	ContentTypes() []string
}
