package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// maxTitleLength bounds auto-generated session titles, in runes.
const maxTitleLength = 60

// ErrSessionStoreMissing is returned when a session is requested but no store is configured.
var ErrSessionStoreMissing = errors.New("session store not configured")

// ChatService answers questions about the contract.
// It builds a fresh Chain per question so that prompt edits take effect
// without a restart, and keeps conversation state out of the chain.
type ChatService struct {
	base     ChainConfig
	prompts  driven.PromptStore
	sessions driven.SessionStore
	now      func() time.Time
}

// NewChatService creates a chat service.
// base supplies the collaborators and tuning; its prompts and sink are ignored.
// sessions may be nil, in which case only request-supplied history is used.
func NewChatService(base ChainConfig, prompts driven.PromptStore, sessions driven.SessionStore) (*ChatService, error) {
	if base.Index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if base.Embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if base.QuestionLLM == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: prompt store is nil", domain.ErrInvalidPrompt)
	}
	return &ChatService{
		base:     base,
		prompts:  prompts,
		sessions: sessions,
		now:      time.Now,
	}, nil
}

// Ask answers a question, loading and extending the session named by req.SessionID.
func (s *ChatService) Ask(ctx context.Context, req domain.AskRequest, sink domain.TokenSink) (*domain.Answer, error) {
	question := domain.SanitiseQuestion(req.Question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	var session *domain.Session
	history := req.History
	if req.SessionID != "" {
		if s.sessions == nil {
			return nil, ErrSessionStoreMissing
		}
		loaded, err := s.sessions.Get(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		session = loaded
		history = loaded.Turns
		logger.Debug("Session %s: %d prior turns", session.ID, len(history))
	}

	chain, err := s.chain(sink)
	if err != nil {
		return nil, err
	}

	answer, err := chain.Call(ctx, question, history)
	if err != nil {
		return nil, err
	}

	if session != nil {
		if err := s.record(ctx, session, question, answer.Text); err != nil {
			return nil, err
		}
	}
	return answer, nil
}

// Retrieve returns the passages a question would be answered from.
func (s *ChatService) Retrieve(ctx context.Context, query string) ([]domain.Passage, error) {
	query = domain.SanitiseQuestion(query)
	if query == "" {
		return nil, domain.ErrEmptyQuestion
	}
	retriever, err := NewRetriever(s.base.Embedder, s.base.Index, s.base.K)
	if err != nil {
		return nil, err
	}
	return retriever.Retrieve(ctx, query)
}

// chain builds a Chain from the base config and the current prompt files.
func (s *ChatService) chain(sink domain.TokenSink) (*Chain, error) {
	condense, err := s.template(driven.PromptCondenseQuestion)
	if err != nil {
		return nil, err
	}
	qa, err := s.template(driven.PromptQA)
	if err != nil {
		return nil, err
	}

	cfg := s.base
	cfg.CondensePrompt = condense
	cfg.QAPrompt = qa
	cfg.Sink = sink
	return NewChain(cfg)
}

func (s *ChatService) template(name string) (domain.PromptTemplate, error) {
	text, err := s.prompts.Load(name)
	if err != nil {
		return domain.PromptTemplate{}, fmt.Errorf("load prompt %s: %w", name, err)
	}
	return domain.NewPromptTemplate(name, text)
}

// record appends the exchange to the session, titling it from the first question.
func (s *ChatService) record(ctx context.Context, session *domain.Session, question, answer string) error {
	if err := s.sessions.AppendTurn(ctx, session.ID, domain.ChatTurn{
		Question: question,
		Answer:   answer,
	}); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}

	if session.Title != "" {
		return nil
	}
	session.Title = titleFromQuestion(question)
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		logger.Warn("Failed to title session %s: %v", session.ID, err)
	}
	return nil
}

func titleFromQuestion(question string) string {
	if utf8.RuneCountInString(question) <= maxTitleLength {
		return question
	}
	runes := []rune(question)
	return string(runes[:maxTitleLength-3]) + "..."
}
