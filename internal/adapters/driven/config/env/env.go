// Package env reads process environment overrides, optionally seeded from a
// .env file, and applies them on top of stored settings.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Environment variable names.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	IndexName       = "PINECONE_INDEX_NAME"
	Namespace       = "PINECONE_NAME_SPACE"
	PineconeAPIKey  = "PINECONE_API_KEY"
	PineconeHost    = "PINECONE_HOST"
	WeaviateHost    = "WEAVIATE_HOST"
	WeaviateAPIKey  = "WEAVIATE_API_KEY"
	OpenAIAPIKey    = "OPENAI_API_KEY"
	AnthropicAPIKey = "ANTHROPIC_API_KEY"
	GeminiAPIKey    = "GEMINI_API_KEY"
	OllamaHost      = "OLLAMA_HOST"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads variables from the given files (default ".env") into the
// process environment. Variables already set are not overwritten and a
// missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("No %s file, using process environment", f)
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
		logger.Debug("Loaded environment from %s", f)
	}
	return nil
}

// Resolve applies environment overrides to settings and enforces the
// startup requirements: a Pinecone backend needs PINECONE_INDEX_NAME set
// and always queries a namespace. Other backends keep an empty namespace,
// which searches unfiltered.
func Resolve(settings *domain.AppSettings, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	Apply(settings, lookup)

	if settings.Index.Backend == domain.IndexBackendPinecone {
		if name, ok := get(lookup, IndexName); !ok || name == "" {
			return domain.ErrMissingIndexName
		}
	}
	if settings.Index.Namespace == "" {
		settings.Index.Namespace = settings.Index.Backend.NamespaceDefault()
	}
	return nil
}

// Apply copies any set environment values into settings. Provider keys are
// only applied to the sections using that provider.
func Apply(settings *domain.AppSettings, lookup LookupFunc) {
	switch settings.Index.Backend {
	case domain.IndexBackendPinecone:
		set(lookup, IndexName, &settings.Index.Name)
		set(lookup, Namespace, &settings.Index.Namespace)
		set(lookup, PineconeAPIKey, &settings.Index.APIKey)
		set(lookup, PineconeHost, &settings.Index.Host)
	case domain.IndexBackendWeaviate:
		set(lookup, WeaviateHost, &settings.Index.Host)
		set(lookup, WeaviateAPIKey, &settings.Index.APIKey)
	}

	keys := map[domain.AIProvider]string{
		domain.AIProviderOpenAI:    OpenAIAPIKey,
		domain.AIProviderAnthropic: AnthropicAPIKey,
		domain.AIProviderGemini:    GeminiAPIKey,
	}
	if name, ok := keys[settings.LLM.Provider]; ok {
		set(lookup, name, &settings.LLM.APIKey)
	}
	if name, ok := keys[settings.Embedding.Provider]; ok {
		set(lookup, name, &settings.Embedding.APIKey)
	}

	if settings.LLM.Provider == domain.AIProviderOllama {
		set(lookup, OllamaHost, &settings.LLM.BaseURL)
	}
	if settings.Embedding.Provider == domain.AIProviderOllama {
		set(lookup, OllamaHost, &settings.Embedding.BaseURL)
	}
}

func get(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	return strings.TrimSpace(v), ok
}

func set(lookup LookupFunc, key string, dst *string) {
	if v, ok := get(lookup, key); ok && v != "" {
		*dst = v
	}
}
