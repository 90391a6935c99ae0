// Package chunker splits extracted document text into token-bounded,
// overlapping pieces ready for embedding.
//
// Chunking is a pure function of the input text and the configured
// sizes: identical inputs always produce an identical sequence of
// pieces, with no randomness or timing dependence. Splitting happens
// at paragraph boundaries first, falling back to sentence granularity
// for oversized paragraphs and to plain word groups for oversized
// sentences.
package chunker

import (
	"regexp"
	"strings"
)

// DefaultTargetTokens is the default token budget per chunk.
const DefaultTargetTokens = 800

// DefaultOverlapTokens is the default overlap carried between chunks.
const DefaultOverlapTokens = 200

// Piece is one emitted chunk of text with its token count.
type Piece struct {
	// Text is the chunk content.
	Text string

	// TokenCount is the token count of Text.
	TokenCount int
}

// Chunker splits text into bounded pieces with overlap.
type Chunker struct {
	targetTokens  int
	overlapTokens int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTargetTokens sets the token budget per chunk.
func WithTargetTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.targetTokens = n
		}
	}
}

// WithOverlapTokens sets the overlap carried between chunks.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapTokens = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		targetTokens:  DefaultTargetTokens,
		overlapTokens: DefaultOverlapTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed the chunk budget
	if c.overlapTokens >= c.targetTokens {
		c.overlapTokens = c.targetTokens / 4
	}

	return c
}

// TargetTokens returns the configured token budget per chunk.
func (c *Chunker) TargetTokens() int {
	return c.targetTokens
}

// OverlapTokens returns the configured overlap size.
func (c *Chunker) OverlapTokens() int {
	return c.overlapTokens
}

// unit is a split fragment awaiting greedy accumulation. Oversized
// sentences are pre-split into word groups, which bypass the overlap
// chain entirely.
type unit struct {
	text      string
	tokens    int
	separator string // placed before the unit when joining a buffer
	wordGroup bool
}

// Chunk splits text into ordered pieces of at most
// targetTokens+overlapTokens tokens each. Blank or whitespace-only
// input yields no pieces.
func (c *Chunker) Chunk(text string) []Piece {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	units := c.split(text)

	var pieces []Piece

	var buf []unit
	bufTokens := 0
	seedOnly := true // buffer holds nothing beyond the overlap seed

	emit := func(seedNext bool) {
		if len(buf) == 0 || seedOnly {
			return
		}
		joined := joinUnits(buf)
		pieces = append(pieces, Piece{Text: joined, TokenCount: CountTokens(joined)})

		buf = nil
		bufTokens = 0
		seedOnly = true

		if seedNext && c.overlapTokens > 0 {
			tail := c.overlapTail(joined)
			if tail != "" {
				buf = []unit{{text: tail, tokens: CountTokens(tail), separator: " "}}
				bufTokens = CountTokens(tail)
			}
		}
	}

	for _, u := range units {
		if u.wordGroup {
			// Correctness floor: a sentence too large for the budget is
			// grouped by words with no overlap on either side.
			emit(false)
			pieces = append(pieces, Piece{Text: u.text, TokenCount: u.tokens})
			continue
		}

		if !seedOnly && bufTokens+u.tokens > c.targetTokens {
			emit(true)
		}

		buf = append(buf, u)
		bufTokens += u.tokens
		seedOnly = false
	}

	emit(false)

	return pieces
}

// split breaks text into accumulation units: paragraphs where they
// fit the budget, sentences where a paragraph is oversized, and word
// groups where even a sentence is oversized.
func (c *Chunker) split(text string) []unit {
	var units []unit

	for _, para := range splitParagraphs(text) {
		tokens := CountTokens(para)
		if tokens <= c.targetTokens {
			units = append(units, unit{text: para, tokens: tokens, separator: "\n\n"})
			continue
		}

		for _, sentence := range splitSentences(para) {
			stokens := CountTokens(sentence)
			if stokens <= c.targetTokens {
				units = append(units, unit{text: sentence, tokens: stokens, separator: " "})
				continue
			}

			words := strings.Fields(sentence)
			for start := 0; start < len(words); start += c.targetTokens {
				end := start + c.targetTokens
				if end > len(words) {
					end = len(words)
				}
				group := strings.Join(words[start:end], " ")
				units = append(units, unit{
					text:      group,
					tokens:    end - start,
					separator: " ",
					wordGroup: true,
				})
			}
		}
	}

	return units
}

// overlapTail returns the overlap seed for the chunk that follows
// emitted text: its last overlapTokens tokens, trimmed back to the
// last one or two complete sentences when a sentence boundary exists
// inside that window, verbatim otherwise.
func (c *Chunker) overlapTail(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	start := len(words) - c.overlapTokens
	if start < 0 {
		start = 0
	}
	tail := strings.Join(words[start:], " ")

	fragments := splitSentences(tail)
	if len(fragments) < 2 {
		// No boundary inside the window; use the tail verbatim.
		return tail
	}

	// The leading fragment may begin mid-sentence; everything after the
	// first boundary is complete. Keep at most the last two sentences.
	complete := fragments[1:]
	if len(complete) > 2 {
		complete = complete[len(complete)-2:]
	}
	return strings.Join(complete, " ")
}

// joinUnits concatenates buffered units using each unit's separator.
func joinUnits(units []unit) string {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteString(u.separator)
		}
		b.WriteString(u.text)
	}
	return b.String()
}

// CountTokens returns the token count used for all chunk budgeting.
// Tokens are whitespace-delimited words, which keeps chunk boundaries
// reproducible without an external tokenizer.
func CountTokens(s string) int {
	return len(strings.Fields(s))
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// splitParagraphs splits text on blank-line boundaries, dropping
// whitespace-only paragraphs.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// splitSentences splits content into sentences by common terminators.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(current.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
