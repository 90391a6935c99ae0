package services

import (
	"context"
	"strings"

	"github.com/veridoc-labs/veridoc/internal/core/domain"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
	"github.com/veridoc-labs/veridoc/internal/core/ports/driving"
	"github.com/veridoc-labs/veridoc/internal/logger"
)

// apologyAnswer is shown when the generator itself fails. The real
// error goes into the answer's Diagnostic field, never the answer text.
const apologyAnswer = "I'm sorry, but I couldn't generate an answer right now. Please try again in a moment."

// Ensure AnswerService implements the interface.
var _ driving.AskService = (*AnswerService)(nil)

// AnswerService answers questions against the corpus: retrieve, build a
// grounding prompt, generate, extract citations. Stateless per request;
// concurrent questions are fully independent.
type AnswerService struct {
	retriever  *Retriever
	assembler  *PromptAssembler
	citations  *CitationExtractor
	llmService driven.LLMService
	docStore   driven.DocumentStore

	generateOpts driven.GenerateOptions
}

// AnswerOption configures the answer service.
type AnswerOption func(*AnswerService)

// WithGenerateOptions sets the generation parameters passed to the LLM.
func WithGenerateOptions(opts driven.GenerateOptions) AnswerOption {
	return func(s *AnswerService) {
		s.generateOpts = opts
	}
}

// NewAnswerService creates an answer service.
func NewAnswerService(
	retriever *Retriever,
	assembler *PromptAssembler,
	citations *CitationExtractor,
	llmService driven.LLMService,
	docStore driven.DocumentStore,
	opts ...AnswerOption,
) *AnswerService {
	s := &AnswerService{
		retriever:  retriever,
		assembler:  assembler,
		citations:  citations,
		llmService: llmService,
		docStore:   docStore,
		generateOpts: driven.GenerateOptions{
			MaxTokens:   1024,
			Temperature: 0.2,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask answers a question grounded in retrieved chunks. Retrieval that
// finds nothing produces an explicit insufficient-information answer
// with its empty-context classification; a generator failure produces
// an apology answer carrying the diagnostic. Neither is an error to the
// caller.
func (s *AnswerService) Ask(ctx context.Context, question string, opts domain.RetrieveOptions) (*domain.Answer, error) {
	logger.Section("Question Answering")
	logger.Debug("Question: %q", question)

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrInvalidInput
	}

	chunks := s.retriever.Retrieve(ctx, question, opts)

	if len(chunks) == 0 {
		return s.answerEmpty(ctx, question, opts)
	}

	// The candidate list numbered into the prompt is, by construction,
	// the same ordered list the extractor resolves against. Nothing may
	// re-run retrieval between the two.
	candidates := make([]domain.Citation, len(chunks))
	for i, rc := range chunks {
		candidates[i] = rc.Citation()
	}

	prompt := s.assembler.Build(question, chunks)

	text, err := s.llmService.Generate(ctx, prompt, s.generateOpts)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return &domain.Answer{
			Text:       apologyAnswer,
			Diagnostic: err.Error(),
		}, nil
	}

	used, rewritten := s.citations.Extract(text, candidates)
	logger.Info("Answer generated: %d citations", len(used))

	return &domain.Answer{
		Text:      rewritten,
		Citations: used,
	}, nil
}

// answerEmpty handles a question with no grounding: classify why
// retrieval came back empty, then generate an explicit
// insufficient-information answer with no citation scaffold.
func (s *AnswerService) answerEmpty(ctx context.Context, question string, opts domain.RetrieveOptions) (*domain.Answer, error) {
	emptyType := s.classifyEmpty(ctx, opts)
	logger.Info("No grounding available: %s", emptyType)

	prompt := s.assembler.Build(question, nil)

	text, err := s.llmService.Generate(ctx, prompt, s.generateOpts)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return &domain.Answer{
			Text:         apologyAnswer,
			EmptyContext: &domain.EmptyContext{Type: emptyType},
			Diagnostic:   err.Error(),
		}, nil
	}

	return &domain.Answer{
		Text:         text,
		EmptyContext: &domain.EmptyContext{Type: emptyType},
	}, nil
}

// classifyEmpty distinguishes an empty corpus, a recency filter that
// excluded everything, and a corpus with nothing close enough.
func (s *AnswerService) classifyEmpty(ctx context.Context, opts domain.RetrieveOptions) domain.EmptyContextType {
	total, err := s.docStore.CountDocuments(ctx, nil)
	if err != nil {
		logger.Warn("Counting documents failed: %v", err)
		return domain.EmptyNoRelevantChunks
	}
	if total == 0 {
		return domain.EmptyNoDocuments
	}

	if opts.CreatedAfter != nil {
		recent, err := s.docStore.CountDocuments(ctx, opts.CreatedAfter)
		if err != nil {
			logger.Warn("Counting recent documents failed: %v", err)
			return domain.EmptyNoRelevantChunks
		}
		if recent == 0 {
			return domain.EmptyNoRecentDocuments
		}
	}

	return domain.EmptyNoRelevantChunks
}
