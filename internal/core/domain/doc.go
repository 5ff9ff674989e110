// Package domain defines the core business entities for pdfchat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Passage: A retrieved excerpt of the contract with its metadata
//   - ChatTurn: One prior question/answer exchange
//   - Answer: The result of a conversational retrieval call
//   - PromptTemplate: Text with named placeholders rendered before each model call
//   - Session: A persisted conversation owned by the driving surfaces
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
