package services

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure RateLimitedLLM implements the interface.
var _ driven.LLMService = (*RateLimitedLLM)(nil)

// RateLimitedLLM throttles calls to a wrapped LLM service.
// Only generation calls consume tokens from the bucket.
type RateLimitedLLM struct {
	next   driven.LLMService
	bucket *rate.Limiter
}

// NewRateLimitedLLM wraps next with a limiter allowing requestsPerSecond calls.
// A non-positive rate returns next unchanged.
func NewRateLimitedLLM(next driven.LLMService, requestsPerSecond float64) driven.LLMService {
	if next == nil || requestsPerSecond <= 0 {
		return next
	}
	return &RateLimitedLLM{
		next:   next,
		bucket: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Generate waits for the limiter and delegates.
func (r *RateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.next.Generate(ctx, prompt, opts)
}

// GenerateStream waits for the limiter and delegates.
func (r *RateLimitedLLM) GenerateStream(
	ctx context.Context,
	prompt string,
	opts driven.GenerateOptions,
	onToken func(token string) error,
) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.next.GenerateStream(ctx, prompt, opts, onToken)
}

// ModelName returns the wrapped model name.
func (r *RateLimitedLLM) ModelName() string {
	return r.next.ModelName()
}

// Ping delegates without consuming the limiter.
func (r *RateLimitedLLM) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Close closes the wrapped service.
func (r *RateLimitedLLM) Close() error {
	return r.next.Close()
}

func (r *RateLimitedLLM) wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return nil
}
