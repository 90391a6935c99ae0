package chunker

import (
	"fmt"
	"strings"
	"testing"
)

// sentence builds a sentence with exactly n whitespace tokens.
func sentence(n int, seq int) string {
	words := make([]string, n)
	for i := 0; i < n-1; i++ {
		words[i] = fmt.Sprintf("word%d_%d", seq, i)
	}
	words[n-1] = fmt.Sprintf("end%d.", seq)
	return strings.Join(words, " ")
}

// paragraph builds a paragraph of count sentences of n tokens each.
func paragraph(count, n, seq int) string {
	sentences := make([]string, count)
	for i := 0; i < count; i++ {
		sentences[i] = sentence(n, seq*1000+i)
	}
	return strings.Join(sentences, " ")
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.TargetTokens() != DefaultTargetTokens {
			t.Errorf("expected target %d, got %d", DefaultTargetTokens, c.TargetTokens())
		}
		if c.OverlapTokens() != DefaultOverlapTokens {
			t.Errorf("expected overlap %d, got %d", DefaultOverlapTokens, c.OverlapTokens())
		}
	})

	t.Run("custom sizes", func(t *testing.T) {
		c := New(WithTargetTokens(100), WithOverlapTokens(25))
		if c.TargetTokens() != 100 || c.OverlapTokens() != 25 {
			t.Errorf("expected 100/25, got %d/%d", c.TargetTokens(), c.OverlapTokens())
		}
	})

	t.Run("overlap exceeding target is reduced", func(t *testing.T) {
		c := New(WithTargetTokens(100), WithOverlapTokens(150))
		if c.OverlapTokens() >= c.TargetTokens() {
			t.Error("overlap should be reduced when it exceeds target")
		}
	})

	t.Run("non-positive values ignored", func(t *testing.T) {
		c := New(WithTargetTokens(0), WithOverlapTokens(-1))
		if c.TargetTokens() != DefaultTargetTokens {
			t.Errorf("expected default target, got %d", c.TargetTokens())
		}
		if c.OverlapTokens() != DefaultOverlapTokens {
			t.Errorf("expected default overlap, got %d", c.OverlapTokens())
		}
	})
}

func TestChunk_EmptyInput(t *testing.T) {
	c := New()
	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		if pieces := c.Chunk(input); len(pieces) != 0 {
			t.Errorf("expected no pieces for %q, got %d", input, len(pieces))
		}
	}
}

func TestChunk_SmallTextSinglePiece(t *testing.T) {
	c := New(WithTargetTokens(100), WithOverlapTokens(20))
	text := "First sentence here. Second sentence follows."

	pieces := c.Chunk(text)
	if len(pieces) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(pieces))
	}
	if pieces[0].Text != text {
		t.Errorf("expected content preserved, got %q", pieces[0].Text)
	}
	if pieces[0].TokenCount != CountTokens(text) {
		t.Errorf("expected token count %d, got %d", CountTokens(text), pieces[0].TokenCount)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c := New(WithTargetTokens(50), WithOverlapTokens(10))
	text := paragraph(20, 8, 1) + "\n\n" + paragraph(15, 6, 2)

	first := c.Chunk(text)
	for i := 0; i < 5; i++ {
		again := c.Chunk(text)
		if len(again) != len(first) {
			t.Fatalf("run %d: piece count changed from %d to %d", i, len(first), len(again))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: piece %d differs", i, j)
			}
		}
	}
}

func TestChunk_NoPieceExceedsBudget(t *testing.T) {
	c := New(WithTargetTokens(60), WithOverlapTokens(15))
	text := paragraph(30, 7, 1) + "\n\n" + paragraph(40, 5, 2) + "\n\n" + sentence(200, 3)

	for i, p := range c.Chunk(text) {
		if p.TokenCount > c.TargetTokens()+c.OverlapTokens() {
			t.Errorf("piece %d has %d tokens, budget is %d", i, p.TokenCount, c.TargetTokens()+c.OverlapTokens())
		}
	}
}

func TestChunk_CombinedTokensCoverInput(t *testing.T) {
	c := New(WithTargetTokens(60), WithOverlapTokens(15))
	text := paragraph(25, 8, 1) + "\n\n" + paragraph(10, 4, 2)

	total := 0
	for _, p := range c.Chunk(text) {
		total += p.TokenCount
	}
	if raw := CountTokens(text); total < raw {
		t.Errorf("combined token count %d is below raw count %d", total, raw)
	}
}

func TestChunk_TwoParagraphScenario(t *testing.T) {
	// A 2000-token document in two paragraphs chunked at 800/200 must
	// produce exactly 3 pieces, each starting with the prior tail.
	c := New(WithTargetTokens(800), WithOverlapTokens(200))
	text := paragraph(50, 20, 1) + "\n\n" + paragraph(50, 20, 2)

	if got := CountTokens(text); got != 2000 {
		t.Fatalf("fixture should hold 2000 tokens, has %d", got)
	}

	pieces := c.Chunk(text)
	if len(pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(pieces))
	}

	for i := 1; i < len(pieces); i++ {
		prevWords := strings.Fields(pieces[i-1].Text)
		overlapStart := strings.Fields(pieces[i].Text)[0]
		found := false
		for _, w := range prevWords[len(prevWords)-c.OverlapTokens():] {
			if w == overlapStart {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("piece %d does not start inside the prior piece's tail", i)
		}
	}
}

func TestChunk_OversizedSentenceFallsBackToWords(t *testing.T) {
	c := New(WithTargetTokens(50), WithOverlapTokens(10))
	text := sentence(130, 1)

	pieces := c.Chunk(text)
	if len(pieces) != 3 {
		t.Fatalf("expected 3 word-group pieces, got %d", len(pieces))
	}
	if pieces[0].TokenCount != 50 || pieces[1].TokenCount != 50 || pieces[2].TokenCount != 30 {
		t.Errorf("unexpected group sizes: %d/%d/%d",
			pieces[0].TokenCount, pieces[1].TokenCount, pieces[2].TokenCount)
	}

	// Word groups carry no overlap: combined tokens equal the raw count.
	total := 0
	for _, p := range pieces {
		total += p.TokenCount
	}
	if total != 130 {
		t.Errorf("expected 130 combined tokens, got %d", total)
	}
}

func TestChunk_OverlapTrimsToSentenceBoundary(t *testing.T) {
	c := New(WithTargetTokens(40), WithOverlapTokens(20))
	// Short sentences so the overlap window always spans boundaries.
	text := paragraph(30, 5, 7)

	pieces := c.Chunk(text)
	if len(pieces) < 2 {
		t.Fatalf("expected multiple pieces, got %d", len(pieces))
	}

	// Each piece after the first starts at a sentence start: its first
	// word must begin a sentence somewhere in the original text.
	for i := 1; i < len(pieces); i++ {
		firstWord := strings.Fields(pieces[i].Text)[0]
		if !strings.HasPrefix(firstWord, "word") && !strings.HasPrefix(firstWord, "end") {
			t.Errorf("piece %d starts with unexpected token %q", i, firstWord)
		}
	}
}

func TestCountTokens(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two three", 3},
		{"  spaced\tout\nwords  ", 3},
	}

	for _, tt := range tests {
		if got := CountTokens(tt.input); got != tt.want {
			t.Errorf("CountTokens(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second one! Third one? Trailing fragment")
	if len(got) != 4 {
		t.Fatalf("expected 4 fragments, got %d: %v", len(got), got)
	}
	if got[0] != "First one." || got[3] != "Trailing fragment" {
		t.Errorf("unexpected fragments: %v", got)
	}
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("para one\nstill para one\n\npara two\n\n\n\npara three\n\n   \n")
	if len(got) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d: %v", len(got), got)
	}
	if got[1] != "para two" {
		t.Errorf("unexpected second paragraph: %q", got[1])
	}
}
