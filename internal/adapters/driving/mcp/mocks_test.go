package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer   *domain.Answer
	passages []domain.Passage
	err      error

	lastRequest domain.AskRequest
	lastSink    domain.TokenSink
	lastQuery   string
}

func (m *mockChatService) Ask(
	_ context.Context,
	req domain.AskRequest,
	sink domain.TokenSink,
) (*domain.Answer, error) {
	m.lastRequest = req
	m.lastSink = sink
	return m.answer, m.err
}

func (m *mockChatService) Retrieve(_ context.Context, query string) ([]domain.Passage, error) {
	m.lastQuery = query
	return m.passages, m.err
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	sessions []domain.Session
	exported []byte
	err      error
}

func (m *mockSessionService) Create(_ context.Context, title string) (*domain.Session, error) {
	return &domain.Session{ID: "new", Title: title}, m.err
}

func (m *mockSessionService) Get(_ context.Context, id string) (*domain.Session, error) {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			return &m.sessions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionService) List(_ context.Context) ([]domain.Session, error) {
	return m.sessions, m.err
}

func (m *mockSessionService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSessionService) Export(_ context.Context, _ string, _ driving.ExportFormat) ([]byte, error) {
	return m.exported, m.err
}

// mockPromptStore is a mock implementation of driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	text, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %s", domain.ErrNotFound, name)
	}
	return text, nil
}

func (m *mockPromptStore) Reload() {}
