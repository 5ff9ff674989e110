// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// A conversational retrieval chain cannot be built without:
//
//   - VectorIndex: Similarity search over the ingested contract (Pinecone, Weaviate, memory)
//   - EmbeddingService: Turns the standalone question into a query vector
//   - LLMService: Condenses follow-up questions and generates answers
//
// # Supporting Interfaces
//
//   - PromptStore: User-editable prompt templates
//   - ConfigStore: Application configuration
//   - SessionStore: Conversation persistence for the driving surfaces
//   - AIConfigValidator: Connectivity checks for provider settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
