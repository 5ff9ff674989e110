// Package ai builds the model and index adapters named by the settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	geminiembed "github.com/custodia-labs/pdfchat/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/pdfchat/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/pdfchat/internal/adapters/driven/embedding/openai"
	memoryindex "github.com/custodia-labs/pdfchat/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/index/pinecone"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/index/weaviate"
	anthropicllm "github.com/custodia-labs/pdfchat/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/pdfchat/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/pdfchat/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/pdfchat/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the collaborators the chain is built from.
// Any field may be nil when the matching settings are not configured.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	Warnings         []string
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise creates every configured adapter without contacting any of them.
// Unconfigured sections are left nil and reported in Warnings; the chain
// rejects a nil collaborator when it is built.
func Initialise(ctx context.Context, settings *domain.AppSettings) (*InitResult, error) {
	result := &InitResult{}

	embedder, err := CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embedder == nil {
		result.Warnings = append(result.Warnings, "embedding provider not configured")
	}
	result.EmbeddingService = embedder

	llm, err := CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		result.Warnings = append(result.Warnings, "LLM provider not configured")
	}
	result.LLMService = llm

	index, err := CreateVectorIndex(&settings.Index)
	if err != nil {
		result.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}
	if index == nil {
		result.Warnings = append(result.Warnings, "vector index not configured")
	}
	result.VectorIndex = index

	if err := checkDimensions(embedder, index); err != nil {
		result.Close()
		return nil, err
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result, nil
}

// dimensioned is implemented by indexes that know their vector size.
type dimensioned interface {
	Dimension() int
}

// checkDimensions fails when the embedding model and the index both report
// a vector size and the two differ.
func checkDimensions(embedder driven.EmbeddingService, index driven.VectorIndex) error {
	if embedder == nil || index == nil {
		return nil
	}
	sized, ok := index.(dimensioned)
	if !ok {
		return nil
	}
	want, have := embedder.Dimensions(), sized.Dimension()
	if want == 0 || have == 0 || want == have {
		return nil
	}
	return fmt.Errorf("%w: embedding model %s produces %d-dimensional vectors but the index holds %d",
		domain.ErrInvalidInput, embedder.ModelName(), want, have)
}

// CreateEmbeddingService creates the embedding service named by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the LLM service named by settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateVectorIndex opens the index named by settings.
// Returns nil if the index is not configured.
//
// For the memory backend Name is an optional path to a JSON file of
// passages and vectors; an empty name gives an empty index.
func CreateVectorIndex(settings *domain.IndexSettings) (driven.VectorIndex, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Backend {
	case domain.IndexBackendPinecone:
		return pinecone.NewIndex(pinecone.Config{
			APIKey:    settings.APIKey,
			IndexName: settings.Name,
			Namespace: settings.Namespace,
			Host:      settings.Host,
		})

	case domain.IndexBackendWeaviate:
		host, scheme, err := splitHost(settings.Host)
		if err != nil {
			return nil, err
		}
		return weaviate.NewIndex(weaviate.Config{
			Host:      host,
			Scheme:    scheme,
			APIKey:    settings.APIKey,
			ClassName: settings.Name,
			Namespace: settings.Namespace,
		})

	case domain.IndexBackendMemory:
		if settings.Name == "" {
			return memoryindex.NewIndex(), nil
		}
		return memoryindex.LoadFile(settings.Name)

	default:
		return nil, fmt.Errorf("%w: index backend %s", domain.ErrUnsupportedType, settings.Backend)
	}
}

// splitHost accepts "host:port" or a URL and returns host and scheme.
func splitHost(raw string) (host, scheme string, err error) {
	if raw == "" {
		return "", "", nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Not a URL; treat as a bare host.
		return raw, "", nil //nolint:nilerr // bare hosts do not parse as URLs
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("unsupported scheme %q in index host", u.Scheme)
	}
	return u.Host, u.Scheme, nil
}

// ValidateEmbeddingConfig creates an embedding service from settings and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return svc.Ping(ctx)
}

// ValidateLLMConfig creates an LLM service from settings and pings it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	svc, err := CreateLLMService(ctx, settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return svc.Ping(ctx)
}

// ValidateIndexConfig opens the index from settings and pings it.
func ValidateIndexConfig(settings *domain.IndexSettings) error {
	if settings != nil && settings.Backend == domain.IndexBackendPinecone && settings.Name == "" {
		return domain.ErrMissingIndexName
	}

	index, err := CreateVectorIndex(settings)
	if err != nil {
		return err
	}
	if index == nil {
		return errors.New("index is not configured")
	}
	defer index.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return index.Ping(ctx)
}
