package services

import (
	"regexp"
	"strconv"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// citationMarker matches bracketed integer references like [3].
var citationMarker = regexp.MustCompile(`\[(\d+)\]`)

// CitationExtractor parses bracketed reference markers out of generated
// answer text and maps them back to the candidate citations the
// generator was shown. It is stateless; the candidate list must be the
// same ordered list the prompt numbered 1..N.
type CitationExtractor struct{}

// NewCitationExtractor creates a citation extractor.
func NewCitationExtractor() *CitationExtractor {
	return &CitationExtractor{}
}

// Extract scans answerText for [n] markers, keeps the distinct valid
// references in order of first appearance, renumbers them sequentially
// and rewrites the text through that mapping. Markers outside
// [1, len(candidates)] are discarded from the citation list and left
// untouched in the text. Text with no valid markers comes back
// unchanged with no citations; that is a normal outcome, not an error.
func (e *CitationExtractor) Extract(answerText string, candidates []domain.Citation) ([]domain.Citation, string) {
	matches := citationMarker.FindAllStringSubmatch(answerText, -1)
	if len(matches) == 0 {
		return nil, answerText
	}

	// Collect distinct valid references in order of first appearance.
	mapping := make(map[int]int)
	var order []int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(candidates) {
			// Hallucinated or out-of-range reference.
			logger.Debug("Discarding citation marker [%s]: outside 1..%d", m[1], len(candidates))
			continue
		}
		if _, seen := mapping[n]; !seen {
			mapping[n] = len(order) + 1
			order = append(order, n)
		}
	}

	if len(order) == 0 {
		return nil, answerText
	}

	rewritten := citationMarker.ReplaceAllStringFunc(answerText, func(marker string) string {
		n, err := strconv.Atoi(marker[1 : len(marker)-1])
		if err != nil {
			return marker
		}
		renumbered, ok := mapping[n]
		if !ok {
			// Invalid markers stay as written.
			return marker
		}
		return "[" + strconv.Itoa(renumbered) + "]"
	})

	used := make([]domain.Citation, len(order))
	for i, n := range order {
		used[i] = candidates[n-1]
	}

	logger.Debug("Citations: %d markers, %d distinct valid references", len(matches), len(used))

	return used, rewritten
}
