package services

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyIndexBackend     = "index.backend"
	keyIndexName        = "index.name"
	keyIndexNamespace   = "index.namespace"
	keyIndexHost        = "index.host"
	keyIndexAPIKey      = "index.api_key"
	keyChainK           = "chain.k"
	keyChainTemperature = "chain.temperature"
	keyChainQAModel     = "chain.qa_model"
	keyChainRPS         = "chain.requests_per_second"
)

// ollamaBaseURL is the default endpoint for local providers.
const ollamaBaseURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	backend := s.getBackend(defaults.Index.Backend)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Index: domain.IndexSettings{
			Backend:   backend,
			Name:      s.configStore.GetString(keyIndexName),
			Namespace: s.getString(keyIndexNamespace, backend.NamespaceDefault()),
			Host:      s.configStore.GetString(keyIndexHost),
			APIKey:    s.configStore.GetString(keyIndexAPIKey),
		},
		Chain: domain.ChainSettings{
			K:                 s.getInt(keyChainK, defaults.Chain.K),
			Temperature:       s.getFloat(keyChainTemperature, defaults.Chain.Temperature),
			QAModel:           s.configStore.GetString(keyChainQAModel),
			RequestsPerSecond: s.getFloat(keyChainRPS, defaults.Chain.RequestsPerSecond),
		},
	}

	return settings, nil
}

// Save persists application settings in a single write.
// Empty API keys are left as stored so that a key supplied through the
// environment is never written back as blank.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyEmbedProvider:    settings.Embedding.Provider.String(),
		keyEmbedModel:       settings.Embedding.Model,
		keyEmbedBaseURL:     settings.Embedding.BaseURL,
		keyLLMProvider:      settings.LLM.Provider.String(),
		keyLLMModel:         settings.LLM.Model,
		keyLLMBaseURL:       settings.LLM.BaseURL,
		keyIndexBackend:     settings.Index.Backend.String(),
		keyIndexName:        settings.Index.Name,
		keyIndexNamespace:   settings.Index.Namespace,
		keyIndexHost:        settings.Index.Host,
		keyChainK:           settings.Chain.K,
		keyChainTemperature: settings.Chain.Temperature,
		keyChainQAModel:     settings.Chain.QAModel,
		keyChainRPS:         settings.Chain.RequestsPerSecond,
	}
	secrets := map[string]string{
		keyEmbedAPIKey: settings.Embedding.APIKey,
		keyLLMAPIKey:   settings.LLM.APIKey,
		keyIndexAPIKey: settings.Index.APIKey,
	}
	for key, secret := range secrets {
		if secret != "" {
			values[key] = secret
		}
	}

	if err := s.configStore.Update(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels(), provider)
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels(), provider)
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetIndex configures the vector index backend.
// An empty namespace falls back to the backend's default, which is only
// set for Pinecone.
func (s *SettingsService) SetIndex(index domain.IndexSettings) error {
	if !index.Backend.IsValid() {
		return fmt.Errorf("invalid index backend: %s", index.Backend)
	}
	if index.Backend != domain.IndexBackendMemory && index.Name == "" {
		return fmt.Errorf("index name required for %s", index.Backend)
	}
	if index.Backend.RequiresAPIKey() && index.APIKey == "" {
		return fmt.Errorf("API key required for %s", index.Backend)
	}
	if index.Namespace == "" {
		index.Namespace = index.Backend.NamespaceDefault()
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Index = index
	return s.Save(settings)
}

// Validate checks that every collaborator the chain needs is configured.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Index.IsConfigured() {
		if settings.Index.Name == "" {
			return domain.ErrMissingIndexName
		}
		return fmt.Errorf("index backend %q is not configured", settings.Index.Backend.Description())
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}
	if settings.Chain.K < 1 {
		return fmt.Errorf("%w: chain.k must be positive, got %d", domain.ErrInvalidInput, settings.Chain.K)
	}
	if settings.Chain.Temperature < 0 || settings.Chain.Temperature > 2 {
		return fmt.Errorf("%w: chain.temperature must be within [0, 2], got %g",
			domain.ErrInvalidInput, settings.Chain.Temperature)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ValidateIndexConfig validates the current index configuration by pinging the backend.
func (s *SettingsService) ValidateIndexConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateIndex(&settings.Index)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(keyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func modelOrDefault(model string, defaults map[domain.AIProvider]string, provider domain.AIProvider) string {
	if model != "" {
		return model
	}
	return defaults[provider]
}

// baseURLFor keeps a custom URL for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return ollamaBaseURL
	}
	return current
}
