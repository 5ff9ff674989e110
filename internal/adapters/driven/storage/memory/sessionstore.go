package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

// Save stores or updates a session header. Existing turns are kept.
func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	if existing, ok := s.sessions[session.ID]; ok {
		stored.Turns = existing.Turns
	} else {
		stored.Turns = cloneTurns(session.Turns)
	}
	s.sessions[session.ID] = stored
	return nil
}

// Get retrieves a session with its turns.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	session.Turns = cloneTurns(session.Turns)
	return &session, nil
}

// List returns all sessions without turns, most recently updated first.
func (s *SessionStore) List(_ context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		session.Turns = nil
		result = append(result, session)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// AppendTurn adds a turn to the end of a session.
func (s *SessionStore) AppendTurn(_ context.Context, id string, turn domain.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.Turns = append(cloneTurns(session.Turns), turn)
	session.UpdatedAt = s.now()
	s.sessions[id] = session
	return nil
}

// Delete removes a session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func cloneTurns(turns []domain.ChatTurn) []domain.ChatTurn {
	if turns == nil {
		return nil
	}
	out := make([]domain.ChatTurn, len(turns))
	copy(out, turns)
	return out
}
