package services

import (
	"context"
	"fmt"

	"github.com/veridoc-labs/veridoc/internal/core/ports/driven"
)

// mockEmbedding is a deterministic EmbeddingService test double. Texts
// with a configured vector get it; everything else gets defaultVec.
type mockEmbedding struct {
	vectors    map[string][]float32
	defaultVec []float32
	err        error
	calls      int
}

func newMockEmbedding(defaultVec []float32) *mockEmbedding {
	return &mockEmbedding{
		vectors:    make(map[string][]float32),
		defaultVec: defaultVec,
	}
}

func (m *mockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return m.defaultVec, nil
}

func (m *mockEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int            { return len(m.defaultVec) }
func (m *mockEmbedding) ModelName() string          { return "mock-embedding" }
func (m *mockEmbedding) Ping(context.Context) error { return m.err }
func (m *mockEmbedding) Close() error               { return nil }

// mockLLM is an LLMService test double returning canned text. It
// records the last prompt for assertions.
type mockLLM struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return m.err }
func (m *mockLLM) Close() error               { return nil }

// mockPromptStore is a PromptStore test double.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if tmpl, ok := m.prompts[name]; ok {
		return tmpl, nil
	}
	return "", fmt.Errorf("prompt %q not found", name)
}

func (m *mockPromptStore) Reload() {}
