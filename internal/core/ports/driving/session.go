package driving

import (
	"context"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// ExportFormat selects the encoding for session export.
type ExportFormat string

// Supported export formats.
const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// SessionService manages persisted conversations.
type SessionService interface {
	// Create starts a new empty session.
	Create(ctx context.Context, title string) (*domain.Session, error)

	// Get retrieves a session with its turns.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// List returns all sessions, most recently updated first.
	List(ctx context.Context) ([]domain.Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Export encodes a session in the requested format.
	Export(ctx context.Context, id string, format ExportFormat) ([]byte, error)
}
