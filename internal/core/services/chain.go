package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// contextSeparator joins passage texts in the {context} slot.
const contextSeparator = "\n\n"

// ChainConfig holds everything a conversational retrieval chain needs.
// It is copied into the chain at construction and never mutated afterwards.
type ChainConfig struct {
	// Index is the similarity search index (required).
	Index driven.VectorIndex

	// Embedder turns the standalone question into a query vector (required).
	Embedder driven.EmbeddingService

	// QuestionLLM condenses follow-up questions (required).
	QuestionLLM driven.LLMService

	// AnswerLLM generates answers. Defaults to QuestionLLM.
	AnswerLLM driven.LLMService

	// Model overrides the answer model. Empty uses AnswerLLM's default.
	Model string

	// Temperature is used for both model calls.
	Temperature float64

	// K is the number of passages retrieved. Defaults to domain.DefaultRetrievalK.
	K int

	// CondensePrompt needs {chat_history} and {question}.
	CondensePrompt domain.PromptTemplate

	// QAPrompt needs {question} and {context}.
	QAPrompt domain.PromptTemplate

	// Sink receives answer tokens. Defaults to domain.NoTokens().
	Sink domain.TokenSink
}

// Chain is a ready-to-invoke conversational retrieval pipeline.
// Calls are independent and safe to run concurrently.
type Chain struct {
	retriever   *Retriever
	questionLLM driven.LLMService
	answerLLM   driven.LLMService
	model       string
	temperature float64
	condense    domain.PromptTemplate
	qa          domain.PromptTemplate
	sink        domain.TokenSink
}

// NewChain validates cfg and builds a chain. It performs no I/O.
func NewChain(cfg ChainConfig) (*Chain, error) {
	if cfg.Index == nil {
		return nil, fmt.Errorf("build chain: %w", domain.ErrVectorIndexUnavailable)
	}

	retriever, err := NewRetriever(cfg.Embedder, cfg.Index, cfg.K)
	if err != nil {
		return nil, fmt.Errorf("build chain: %w", err)
	}

	if cfg.QuestionLLM == nil {
		return nil, fmt.Errorf("build chain: %w", domain.ErrLLMUnavailable)
	}
	answerLLM := cfg.AnswerLLM
	if answerLLM == nil {
		answerLLM = cfg.QuestionLLM
	}

	if err := cfg.CondensePrompt.Require(domain.PlaceholderChatHistory, domain.PlaceholderQuestion); err != nil {
		return nil, fmt.Errorf("build chain: %w", err)
	}
	if err := cfg.QAPrompt.Require(domain.PlaceholderQuestion, domain.PlaceholderContext); err != nil {
		return nil, fmt.Errorf("build chain: %w", err)
	}

	sink := cfg.Sink
	if sink == nil {
		sink = domain.NoTokens()
	}

	return &Chain{
		retriever:   retriever,
		questionLLM: cfg.QuestionLLM,
		answerLLM:   answerLLM,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		condense:    cfg.CondensePrompt,
		qa:          cfg.QAPrompt,
		sink:        sink,
	}, nil
}

// K returns the number of passages retrieved per call.
func (c *Chain) K() int {
	return c.retriever.K()
}

// Temperature returns the sampling temperature used for model calls.
func (c *Chain) Temperature() float64 {
	return c.temperature
}

// Streaming reports whether answers are delivered token by token.
func (c *Chain) Streaming() bool {
	return c.sink.Streaming()
}

// Call answers question given the prior conversation.
func (c *Chain) Call(ctx context.Context, question string, history []domain.ChatTurn) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}

	logger.Section("Condense")
	standalone, err := c.standaloneQuestion(ctx, question, history)
	if err != nil {
		return nil, err
	}

	logger.Section("Retrieve")
	passages, err := c.retriever.Retrieve(ctx, standalone)
	if err != nil {
		return nil, fmt.Errorf("retrieve passages: %w", err)
	}
	for i, p := range passages {
		logger.Debug("Passage %d: %s (score %.3f)", i+1, p.Citation(), p.Score)
	}

	logger.Section("Answer")
	prompt, err := c.qa.Render(map[string]string{
		domain.PlaceholderQuestion: standalone,
		domain.PlaceholderContext:  FormatContext(passages),
	})
	if err != nil {
		return nil, fmt.Errorf("render answer prompt: %w", err)
	}

	text, err := c.generateAnswer(ctx, prompt)
	if err != nil {
		return nil, err
	}
	logger.Info("Answer: %d characters from %d passages", len(text), len(passages))

	return &domain.Answer{
		Text:               text,
		StandaloneQuestion: standalone,
		SourceDocuments:    passages,
	}, nil
}

// standaloneQuestion condenses question against history.
// With no history the question is returned unchanged and no model call is made.
func (c *Chain) standaloneQuestion(ctx context.Context, question string, history []domain.ChatTurn) (string, error) {
	if len(history) == 0 {
		logger.Debug("No chat history, using question as-is")
		return question, nil
	}

	prompt, err := c.condense.Render(map[string]string{
		domain.PlaceholderChatHistory: domain.FormatChatHistory(history),
		domain.PlaceholderQuestion:    question,
	})
	if err != nil {
		return "", fmt.Errorf("render condense prompt: %w", err)
	}

	result, err := c.questionLLM.Generate(ctx, prompt, driven.GenerateOptions{
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("condense question: %w", err)
	}

	standalone := strings.TrimSpace(result)
	if standalone == "" {
		logger.Warn("Condense step returned nothing, falling back to the original question")
		return question, nil
	}
	logger.Debug("Standalone question: %q", standalone)
	return standalone, nil
}

// generateAnswer runs the answer model, streaming through the sink when enabled.
func (c *Chain) generateAnswer(ctx context.Context, prompt string) (string, error) {
	opts := driven.GenerateOptions{
		Model:       c.model,
		Temperature: c.temperature,
	}

	if !c.sink.Streaming() {
		text, err := c.answerLLM.Generate(ctx, prompt, opts)
		if err != nil {
			return "", fmt.Errorf("generate answer: %w", err)
		}
		return text, nil
	}

	var streamed strings.Builder
	full, err := c.answerLLM.GenerateStream(ctx, prompt, opts, func(token string) error {
		if err := c.sink.Emit(token); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrStreamAborted, err)
		}
		streamed.WriteString(token)
		logger.Debug("token: %q", token)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("stream answer: %w", err)
	}
	if full != streamed.String() {
		logger.Warn("Streamed tokens differ from final response (%d vs %d bytes), using streamed text",
			streamed.Len(), len(full))
	}
	return streamed.String(), nil
}

// FormatContext joins passage texts for the {context} placeholder.
func FormatContext(passages []domain.Passage) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return strings.Join(texts, contextSeparator)
}
