package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates a document status change the
	// lifecycle does not permit, such as re-entering a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnsupportedFormat indicates an unrecognised content type.
	// Unrecoverable; surfaced to the uploader.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction indicates text extraction failed for a document.
	// Per-document terminal; drives the document to failed.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding indicates the embedding provider failed.
	// Propagated up through the processing pipeline to the same
	// failed-state handling; no per-chunk retry happens here.
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrGeneration indicates the text generator failed. Caught at the
	// top of answer generation and converted to a user-facing apology;
	// never re-raised to the caller.
	ErrGeneration = errors.New("answer generation failed")

	// ErrEmptyDocument indicates extraction yielded no text. Treated as
	// a processing error, never silently marked completed.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Retrieval is impossible without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGeneratorUnavailable indicates the LLM service is not
	// configured. Asking questions is disabled.
	ErrGeneratorUnavailable = errors.New("generator service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not
	// configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
