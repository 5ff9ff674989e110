package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService manages persisted conversations.
type SessionService struct {
	store driven.SessionStore
	now   func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(store driven.SessionStore) *SessionService {
	return &SessionService{store: store, now: time.Now}
}

// Create starts a new empty session with a generated ID.
func (s *SessionService) Create(ctx context.Context, title string) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Get retrieves a session with its turns.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.store.Get(ctx, id)
}

// List returns all sessions, most recently updated first.
func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	return s.store.List(ctx)
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Export encodes a session as JSON or YAML.
func (s *SessionService) Export(ctx context.Context, id string, format driving.ExportFormat) ([]byte, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := newSessionExport(session)
	switch format {
	case driving.ExportJSON, "":
		return json.MarshalIndent(doc, "", "  ")
	case driving.ExportYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: export format %q", domain.ErrUnsupportedType, format)
	}
}

// sessionExport is the on-disk shape of an exported session.
type sessionExport struct {
	ID        string       `json:"id" yaml:"id"`
	Title     string       `json:"title" yaml:"title"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" yaml:"updated_at"`
	Turns     []turnExport `json:"turns" yaml:"turns"`
}

type turnExport struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

func newSessionExport(session *domain.Session) sessionExport {
	turns := make([]turnExport, len(session.Turns))
	for i, t := range session.Turns {
		turns[i] = turnExport{Question: t.Question, Answer: t.Answer}
	}
	return sessionExport{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt.UTC(),
		UpdatedAt: session.UpdatedAt.UTC(),
		Turns:     turns,
	}
}
