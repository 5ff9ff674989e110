package domain

const unknownDescription = "Unknown"

// Retrieval defaults.
const (
	// DefaultRetrievalK is the number of passages fetched per question.
	DefaultRetrievalK = 2

	// DefaultNamespace is the Pinecone namespace the contract was ingested into.
	DefaultNamespace = "pdf-test"
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend identifies the vector index holding the contract passages.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendPinecone is a hosted Pinecone index.
	IndexBackendPinecone IndexBackend = "pinecone"

	// IndexBackendWeaviate is a Weaviate instance.
	IndexBackendWeaviate IndexBackend = "weaviate"

	// IndexBackendMemory is an in-process index, used for tests and demos.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendPinecone, IndexBackendWeaviate, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this backend needs an API key.
func (b IndexBackend) RequiresAPIKey() bool {
	return b == IndexBackendPinecone
}

// NamespaceDefault returns the namespace used when none is configured.
// Only Pinecone has one; other backends search the whole index unless a
// namespace is set.
func (b IndexBackend) NamespaceDefault() string {
	if b == IndexBackendPinecone {
		return DefaultNamespace
	}
	return ""
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendPinecone:
		return "Pinecone (cloud)"
	case IndexBackendWeaviate:
		return "Weaviate (self-hosted or cloud)"
	case IndexBackendMemory:
		return "In-memory (testing only)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	// Must match the model used when the contract was ingested.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings identifies the vector index. For Pinecone, Name comes from
// PINECONE_INDEX_NAME at startup; it is never computed from the question
// or the conversation.
type IndexSettings struct {
	// Backend selects the index implementation.
	Backend IndexBackend

	// Name is the index name (Pinecone index, Weaviate class).
	Name string

	// Namespace partitions vectors within the index.
	Namespace string

	// Host is the index endpoint. Optional for Pinecone, which can resolve it by name.
	Host string

	// APIKey authenticates against the index service.
	APIKey string
}

// IsConfigured returns true if the index can be opened.
func (i IndexSettings) IsConfigured() bool {
	if !i.Backend.IsValid() {
		return false
	}
	if i.Backend == IndexBackendMemory {
		return true
	}
	if i.Name == "" {
		return false
	}
	if i.Backend.RequiresAPIKey() && i.APIKey == "" {
		return false
	}
	return true
}

// ChainSettings tunes the conversational retrieval chain.
type ChainSettings struct {
	// K is the number of passages retrieved per question.
	K int

	// Temperature is the sampling temperature for every model call.
	Temperature float64

	// QAModel overrides the model used for the answer step.
	// Empty means the configured LLM model.
	QAModel string

	// RequestsPerSecond throttles model calls. Zero disables throttling.
	RequestsPerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Chain holds retrieval chain settings.
	Chain ChainSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The index name is deliberately left empty: it must come from the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		Index: IndexSettings{
			Backend:   IndexBackendPinecone,
			Namespace: DefaultNamespace,
		},
		Chain: ChainSettings{
			K:           DefaultRetrievalK,
			Temperature: 0,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// AllIndexBackends returns all available index backends.
func AllIndexBackends() []IndexBackend {
	return []IndexBackend{
		IndexBackendPinecone,
		IndexBackendWeaviate,
		IndexBackendMemory,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
// The OpenAI default matches the model the contract index was built with.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-ada-002",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-3.5-turbo",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
