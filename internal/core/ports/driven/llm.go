// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides language model completions.
//
// Implementations may include:
//   - OpenAI (gpt-3.5-turbo, gpt-4o)
//   - Anthropic (Claude)
//   - Google Gemini
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a complete text response for a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces a response incrementally, calling onToken once per
	// token in generation order. It returns the full text, which always equals
	// the concatenation of the delivered tokens. A non-nil error from onToken
	// stops generation and is returned wrapped.
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions, onToken func(token string) error) (string, error)

	// ModelName returns the name of the default model.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// Model overrides the service's default model when non-empty.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Adapters always send it, so the zero value means deterministic sampling.
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
