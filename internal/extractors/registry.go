package extractors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps declared content types to extractors.
// Unknown types reject with domain.ErrUnsupportedFormat; there is no
// fallback extractor, so a misdeclared upload fails loudly.
type Registry struct {
	byType map[string]driven.Extractor
}

// NewRegistry creates a registry over the given extractors.
// Later registrations win when two extractors claim the same type.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byType: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for each of its content types.
func (r *Registry) Register(e driven.Extractor) {
	for _, ct := range e.ContentTypes() {
		r.byType[normalizeContentType(ct)] = e
	}
}

// ForContentType returns the extractor registered for the type.
func (r *Registry) ForContentType(contentType string) (driven.Extractor, error) {
	e, ok := r.byType[normalizeContentType(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, contentType)
	}
	return e, nil
}

// ContentTypes returns all registered content types, sorted.
func (r *Registry) ContentTypes() []string {
	types := make([]string, 0, len(r.byType))
	for ct := range r.byType {
		types = append(types, ct)
	}
	sort.Strings(types)
	return types
}

// normalizeContentType lowercases the type and strips parameters such
// as "; charset=utf-8".
func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
