package driving

import (
	"context"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
)

// AskService answers natural-language questions against the corpus,
// grounding every answer in retrieved chunks with citations.
type AskService interface {
	// Ask retrieves relevant chunks, generates a grounded answer and
	// extracts citations. A question with no grounding produces an
	// explicit insufficient-information answer, never a fabricated one.
	// Generation failures surface as an apology answer, not an error.
	Ask(ctx context.Context, question string, opts domain.RetrieveOptions) (*domain.Answer, error)
}
