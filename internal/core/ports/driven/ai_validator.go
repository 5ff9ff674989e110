package driven

import "github.com/custodia-labs/pdfchat/internal/core/domain"

// AIConfigValidator validates provider configurations by testing connectivity.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(config *domain.LLMSettings) error

	// ValidateIndex validates an index configuration by pinging the backend.
	ValidateIndex(config *domain.IndexSettings) error
}
