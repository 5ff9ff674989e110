package driving

import (
	"context"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// ChatService answers questions about the contract.
type ChatService interface {
	// Ask answers a question using conversational retrieval.
	// Tokens are delivered to sink as they are generated when it is streaming.
	Ask(ctx context.Context, req domain.AskRequest, sink domain.TokenSink) (*domain.Answer, error)

	// Retrieve returns the passages the chain would retrieve for query,
	// without calling the language model.
	Retrieve(ctx context.Context, query string) ([]domain.Passage, error)
}
