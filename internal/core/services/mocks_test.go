package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// mockVectorIndex returns fixed hits and records each query.
type mockVectorIndex struct {
	hits []driven.VectorHit
	err  error

	mu        sync.Mutex
	calls     int
	lastK     int
	lastQuery []float32
}

func (m *mockVectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastK = k
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Ping(_ context.Context) error {
	return nil
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockEmbeddingService returns a fixed vector and records embedded texts.
type mockEmbeddingService struct {
	embedding []float32
	err       error

	mu    sync.Mutex
	texts []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	if m.embedding == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) embedded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// mockLLMService answers with a fixed response, or with respond when set.
// Streaming splits the response on spaces, keeping the separators.
type mockLLMService struct {
	response string
	respond  func(prompt string) string
	err      error

	mu       sync.Mutex
	prompts  []string
	options  []driven.GenerateOptions
	streamed int
}

func (m *mockLLMService) record(prompt string, opts driven.GenerateOptions) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, opts)
	if m.respond != nil {
		return m.respond(prompt)
	}
	return m.response
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	response := m.record(prompt, opts)
	if m.err != nil {
		return "", m.err
	}
	return response, nil
}

func (m *mockLLMService) GenerateStream(
	_ context.Context,
	prompt string,
	opts driven.GenerateOptions,
	onToken func(token string) error,
) (string, error) {
	response := m.record(prompt, opts)
	m.mu.Lock()
	m.streamed++
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}

	var sent strings.Builder
	for _, token := range splitTokens(response) {
		if err := onToken(token); err != nil {
			return sent.String(), err
		}
		sent.WriteString(token)
	}
	return response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

func (m *mockLLMService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLMService) prompt(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts[i]
}

func (m *mockLLMService) option(i int) driven.GenerateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.options[i]
}

// splitTokens breaks s into word tokens whose concatenation is s.
func splitTokens(s string) []string {
	var tokens []string
	for s != "" {
		i := strings.Index(s[1:], " ")
		if i < 0 {
			tokens = append(tokens, s)
			break
		}
		tokens = append(tokens, s[:i+1])
		s = s[i+1:]
	}
	return tokens
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
	reloads int
}

func (m *mockPromptStore) Load(name string) (string, error) {
	text, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

func (m *mockPromptStore) Reload() {
	m.reloads++
}

const (
	testCondensePrompt = "History:\n{chat_history}\nFollow Up: {question}\nStandalone question:"
	testQAPrompt       = "Question: {question}\n=========\n{context}\n=========\nAnswer in Markdown:"
)

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptCondenseQuestion: testCondensePrompt,
		driven.PromptQA:               testQAPrompt,
	}}
}

func contractHits() []driven.VectorHit {
	return []driven.VectorHit{
		{
			ID:    "ford",
			Score: 0.91,
			Passage: domain.Passage{
				Text:     "Ford Maverick XL, contract price $23,690",
				Metadata: domain.PassageMetadata{Source: "contract.pdf", Page: 12},
			},
		},
		{
			ID:    "toyota",
			Score: 0.88,
			Passage: domain.Passage{
				Text:     "Toyota Corolla LE, contract price $21,450",
				Metadata: domain.PassageMetadata{Source: "contract.pdf", Page: 14},
			},
		},
		{
			ID:    "silverado",
			Score: 0.52,
			Passage: domain.Passage{
				Text: "Chevrolet Silverado 1500, contract price $41,300",
			},
		},
	}
}
