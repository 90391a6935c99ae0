package services

import (
	"fmt"
	"strings"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// defaultAnswerPrompt grounds generation in the numbered passages.
// Placeholders: %s (numbered context block), %s (question).
const defaultAnswerPrompt = `You are a careful assistant answering questions about a private document library.

Context passages, ranked by relevance:

%s

Question: %s

Instructions:
- Answer using only the numbered context passages above.
- Cite a passage with its bracketed number, for example [2], only when your answer actually uses it.
- If the passages do not fully cover the question, say what is missing rather than guessing.
- Do not invent sources or cite passages you did not use.`

// defaultEmptyContextPrompt handles questions with nothing retrieved.
// It deliberately contains no citation scaffold: numbering an empty
// context invites fabricated references. Placeholder: %s (question).
const defaultEmptyContextPrompt = `You are a careful assistant answering questions about a private document library.

No relevant passages were found in the library for this question.

Question: %s

Instructions:
- State clearly that the library contains no information that answers this question.
- Do not answer from general knowledge.
- Do not cite any sources.`

// Ensure PromptAssembler supports prompt customisation.
var _ driven.PromptStoreAware = (*PromptAssembler)(nil)

// PromptAssembler formats ranked chunks plus the question into a
// grounding prompt for the generator.
type PromptAssembler struct {
	promptStore driven.PromptStore
}

// NewPromptAssembler creates a prompt assembler using the built-in
// default templates.
func NewPromptAssembler() *PromptAssembler {
	return &PromptAssembler{}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (a *PromptAssembler) SetPromptStore(store driven.PromptStore) {
	a.promptStore = store
}

// Build produces the generation prompt. Chunks must arrive in retrieval
// rank order; they are numbered 1..N in that order and the same
// numbering is what CitationExtractor later resolves against. Empty
// chunks produce the no-context template instead.
func (a *PromptAssembler) Build(question string, chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		logger.Debug("Prompt: no context, using empty-context template")
		return fmt.Sprintf(a.loadTemplate(driven.PromptAnswerEmpty, defaultEmptyContextPrompt), question)
	}

	var context strings.Builder
	for i, rc := range chunks {
		if i > 0 {
			context.WriteString("\n\n")
		}
		fmt.Fprintf(&context, "[%d] %s (relevance: %.2f)\n%s",
			i+1, rc.Document.Title, domain.RelevanceFromDistance(rc.Distance), rc.Chunk.Content)
	}

	logger.Debug("Prompt: %d context passages", len(chunks))

	return fmt.Sprintf(a.loadTemplate(driven.PromptAnswer, defaultAnswerPrompt), context.String(), question)
}

// loadTemplate returns the custom template for name when a prompt store
// is configured and has one, falling back to the built-in default.
func (a *PromptAssembler) loadTemplate(name, fallback string) string {
	if a.promptStore == nil {
		return fallback
	}

	tmpl, err := a.promptStore.Load(name)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		if err != nil {
			logger.Debug("Prompt store load %q failed: %v (using default)", name, err)
		}
		return fallback
	}
	return tmpl
}
