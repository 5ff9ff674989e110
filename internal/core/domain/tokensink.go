package domain

import (
	"strings"
	"sync"
)

// TokenSink receives generated text incrementally.
// There are two variants: NoTokens, which disables streaming, and
// Streaming, which forwards every token to a handler in generation order.
type TokenSink interface {
	// Streaming reports whether the model should be asked to stream.
	Streaming() bool

	// Emit delivers one token. A non-nil error aborts generation.
	Emit(token string) error
}

// NoTokens returns a sink that disables streaming.
func NoTokens() TokenSink {
	return noTokens{}
}

// Streaming returns a sink that forwards each token to handler.
// A nil handler yields NoTokens.
func Streaming(handler func(token string) error) TokenSink {
	if handler == nil {
		return noTokens{}
	}
	return streamingSink{handler: handler}
}

type noTokens struct{}

func (noTokens) Streaming() bool { return false }

func (noTokens) Emit(string) error { return nil }

type streamingSink struct {
	handler func(token string) error
}

func (s streamingSink) Streaming() bool { return true }

func (s streamingSink) Emit(token string) error { return s.handler(token) }

// TokenCollector is a streaming sink that records every token it receives.
// It is safe for concurrent use.
type TokenCollector struct {
	mu     sync.Mutex
	tokens []string
}

// Streaming always returns true.
func (c *TokenCollector) Streaming() bool { return true }

// Emit records the token.
func (c *TokenCollector) Emit(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = append(c.tokens, token)
	return nil
}

// Tokens returns a copy of the recorded tokens in delivery order.
func (c *TokenCollector) Tokens() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// String returns the recorded tokens concatenated.
func (c *TokenCollector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.tokens, "")
}
