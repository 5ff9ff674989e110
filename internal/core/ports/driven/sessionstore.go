package driven

import (
	"context"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// SessionStore persists conversations for the CLI, TUI and MCP surfaces.
// The retrieval chain itself is stateless and never touches this store.
type SessionStore interface {
	// Save creates or updates a session's header (title, timestamps).
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session with all its turns.
	// Returns domain.ErrNotFound if the session does not exist.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// List returns all sessions without turns, most recently updated first.
	List(ctx context.Context) ([]domain.Session, error)

	// AppendTurn adds a turn to the end of a session and bumps UpdatedAt.
	AppendTurn(ctx context.Context, id string, turn domain.ChatTurn) error

	// Delete removes a session and its turns.
	Delete(ctx context.Context, id string) error
}
