package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	svc, err := NewLLMService(Config{APIKey: "sk-ant", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}

func TestLLMService_Generate(t *testing.T) {
	var body map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Part one. "},{"type":"text","text":"Part two."}]}`))
	})

	out, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", out)
	assert.Contains(t, body, "temperature")
	assert.InDelta(t, 0.0, body["temperature"], 1e-9)
	assert.InDelta(t, float64(DefaultMaxTokens), body["max_tokens"], 1e-9)
}

func TestLLMService_Generate_APIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
	})

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model")
}

func TestLLMService_GenerateStream(t *testing.T) {
	events := []string{
		"event: message_start\ndata: {\"type\":\"message_start\"}",
		"event: content_block_start\ndata: {\"type\":\"content_block_start\"}",
		"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hello\"}}",
		"event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\" there\"}}",
		"event: message_stop\ndata: {\"type\":\"message_stop\"}",
	}
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		flusher, _ := w.(http.Flusher)
		for _, e := range events {
			_, _ = fmt.Fprintf(w, "%s\n\n", e)
			if flusher != nil {
				flusher.Flush()
			}
		}
	})

	var tokens []string
	out, err := svc.GenerateStream(context.Background(), "p", driven.GenerateOptions{}, func(tok string) error {
		tokens = append(tokens, tok)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", " there"}, tokens)
	assert.Equal(t, "Hello there", out)
}

func TestLLMService_GenerateStream_ErrorEvent(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"message\":\"overloaded\"}}\n\n")
	})

	_, err := svc.GenerateStream(context.Background(), "p", driven.GenerateOptions{}, func(string) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}

// eventHandler writes events as a server-sent stream, pausing between them.
func eventHandler(events []string, pause time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for i, e := range events {
			if i > 0 {
				time.Sleep(pause)
			}
			_, _ = fmt.Fprintf(w, "%s\n\n", e)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func delta(text string) string {
	return fmt.Sprintf("event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":%q}}", text)
}

func TestLLMService_GenerateStream_OutlastsTimeout(t *testing.T) {
	server := httptest.NewServer(eventHandler([]string{
		delta("The Ford"),
		delta(" Maverick"),
		delta(" qualifies."),
		"event: message_stop\ndata: {\"type\":\"message_stop\"}",
	}, 40*time.Millisecond))
	t.Cleanup(server.Close)
	svc, err := NewLLMService(Config{APIKey: "sk-ant", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	out, err := svc.GenerateStream(context.Background(), "p", driven.GenerateOptions{}, func(string) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, "The Ford Maverick qualifies.", out)
}

func TestLLMService_GenerateStream_Truncated(t *testing.T) {
	tests := []struct {
		name   string
		events []string
		want   string
	}{
		{name: "closed after deltas", events: []string{delta("The Ford"), delta(" Mav")}, want: "The Ford Mav"},
		{name: "closed after message_delta", events: []string{delta("Yes."), "event: message_delta\ndata: {\"type\":\"message_delta\"}"}, want: "Yes."},
		{name: "empty body", events: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, eventHandler(tt.events, 0))

			out, err := svc.GenerateStream(context.Background(), "p", driven.GenerateOptions{}, func(string) error { return nil })

			assert.ErrorIs(t, err, domain.ErrStreamIncomplete)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestLLMService_Ping(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid x-api-key"))
	})

	err := svc.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
