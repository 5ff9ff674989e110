package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Queries cannot be turned into vectors without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index handle is absent.
	// A chain cannot be built without one.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Configuration Errors.

	// ErrMissingIndexName indicates PINECONE_INDEX_NAME was not provided.
	// This is fatal at startup.
	ErrMissingIndexName = errors.New("missing Pinecone index name in .env file")

	// Prompt Errors.

	// ErrInvalidPrompt indicates a prompt template is malformed or lacks
	// a placeholder the chain depends on.
	ErrInvalidPrompt = errors.New("invalid prompt template")

	// ErrMissingPromptValue indicates a placeholder had no bound value at render time.
	ErrMissingPromptValue = errors.New("missing value for prompt placeholder")

	// Conversation Errors.

	// ErrEmptyQuestion indicates the question was empty after sanitising.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrStreamAborted indicates a token handler stopped a streamed answer.
	ErrStreamAborted = errors.New("token stream aborted")

	// ErrStreamIncomplete indicates a streamed answer ended before the
	// provider sent its end-of-stream marker.
	ErrStreamIncomplete = errors.New("token stream ended early")
)
