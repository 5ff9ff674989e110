package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
)

// mockChatService streams a fixed answer word by word.
type mockChatService struct {
	answer   string
	sources  []domain.Passage
	err      error
	requests []domain.AskRequest
	queries  []string
	streamed bool
}

func (m *mockChatService) Ask(_ context.Context, req domain.AskRequest, sink domain.TokenSink) (*domain.Answer, error) {
	m.requests = append(m.requests, req)
	m.streamed = sink.Streaming()
	if m.err != nil {
		return nil, m.err
	}
	if sink.Streaming() {
		for _, word := range strings.SplitAfter(m.answer, " ") {
			if err := sink.Emit(word); err != nil {
				return nil, err
			}
		}
	}
	return &domain.Answer{
		Text:               m.answer,
		StandaloneQuestion: req.Question,
		SourceDocuments:    m.sources,
	}, nil
}

func (m *mockChatService) Retrieve(_ context.Context, query string) ([]domain.Passage, error) {
	m.queries = append(m.queries, query)
	return m.sources, m.err
}

// mockSessionService keeps sessions in a map.
type mockSessionService struct {
	sessions map[string]*domain.Session
	deleted  []string
	exported driving.ExportFormat
	err      error
}

func (m *mockSessionService) Create(_ context.Context, title string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	id := fmt.Sprintf("session-%d", len(m.sessions)+1)
	s := &domain.Session{ID: id, Title: title}
	m.sessions[id] = s
	return s, nil
}

func (m *mockSessionService) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockSessionService) List(_ context.Context) ([]domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSessionService) Delete(_ context.Context, id string) error {
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sessions, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockSessionService) Export(_ context.Context, id string, format driving.ExportFormat) ([]byte, error) {
	if _, ok := m.sessions[id]; !ok {
		return nil, domain.ErrNotFound
	}
	m.exported = format
	return []byte("id: " + id), nil
}

// mockSettingsService returns fixed settings.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(domain.AIProvider, string, string) error { return nil }

func (m *mockSettingsService) SetEmbeddingProvider(domain.AIProvider, string, string) error {
	return nil
}

func (m *mockSettingsService) SetIndex(domain.IndexSettings) error { return nil }

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

func (m *mockSettingsService) ValidateIndexConfig() error { return nil }

// mockPromptManager serves prompts from a map.
type mockPromptManager struct {
	prompts map[string]string
	reset   []string
}

func (m *mockPromptManager) Load(name string) (string, error) {
	text, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %s", domain.ErrNotFound, name)
	}
	return text, nil
}

func (m *mockPromptManager) Reload() {}

func (m *mockPromptManager) Reset(name string) error {
	m.reset = append(m.reset, name)
	return nil
}

func (m *mockPromptManager) Dir() string { return "/tmp/prompts" }

func (m *mockPromptManager) Path(name string) string { return "/tmp/prompts/" + name + ".txt" }
