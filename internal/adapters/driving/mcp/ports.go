package mcp

import (
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// Ports aggregates the interfaces the MCP server is built on.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions about the contract.
	Chat driving.ChatService

	// Sessions exposes persisted conversations as resources.
	Sessions driving.SessionService

	// Prompts exposes the prompt templates as resources.
	Prompts driven.PromptStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	// Sessions and Prompts are optional
	return nil
}
