package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

func TestAskCmd_StreamsAnswer(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "How", "long", "is", "the", "term?")
	require.NoError(t, err)

	assert.True(t, ts.chat.streamed)
	assert.Equal(t, ts.chat.answer+"\n", out)
	require.Len(t, ts.chat.requests, 1)
	assert.Equal(t, "How long is the term?", ts.chat.requests[0].Question)
	assert.Empty(t, ts.chat.requests[0].SessionID)
	assert.Empty(t, ts.chat.requests[0].History)
}

func TestAskCmd_NoStream(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "--no-stream", "term?")
	require.NoError(t, err)

	assert.False(t, ts.chat.streamed)
	assert.Equal(t, ts.chat.answer+"\n", out)
}

func TestAskCmd_Sources(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "--sources", "term?")
	require.NoError(t, err)

	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] contract.pdf, p. 3 (0.92)")
}

func TestAskCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "--json", "term?")
	require.NoError(t, err)
	assert.False(t, ts.chat.streamed)

	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ts.chat.answer, got.Answer)
	assert.Equal(t, "term?", got.StandaloneQuestion)
	assert.Empty(t, got.SessionID)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "contract.pdf, p. 3", got.Sources[0].Citation)
	assert.InDelta(t, 0.92, got.Sources[0].Score, 1e-9)
}

func TestAskCmd_WithSession(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ask", "--session", "abc", "and renewal?")
	require.NoError(t, err)

	require.Len(t, ts.chat.requests, 1)
	assert.Equal(t, "abc", ts.chat.requests[0].SessionID)
}

func TestAskCmd_NewSession(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "--new", "term?")
	require.NoError(t, err)

	require.Len(t, ts.sessions.sessions, 1)
	require.Len(t, ts.chat.requests, 1)
	assert.Equal(t, "session-1", ts.chat.requests[0].SessionID)
	assert.Contains(t, out, "Session: session-1")
}

func TestAskCmd_NewSessionJSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "ask", "--new", "--json", "term?")
	require.NoError(t, err)

	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "session-1", got.SessionID)
}

func TestAskCmd_SessionAndNewConflict(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ask", "--new", "--session", "abc", "term?")
	assert.Error(t, err)
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ask")
	assert.Error(t, err)
}

func TestAskCmd_ChainError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.chat.err = domain.ErrLLMUnavailable

	_, err := execute(t, "ask", "term?")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "failed to answer")
}

func TestAskCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{ChatErr: domain.ErrMissingIndexName})

	_, err := execute(t, "ask", "term?")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingIndexName)
}

func TestAskCmd_NewWithoutSessionService(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{Chat: ts.chat})

	_, err := execute(t, "ask", "--new", "term?")
	assert.EqualError(t, err, "session service not configured")
	assert.Empty(t, ts.chat.requests)
}

func TestPrintSources(t *testing.T) {
	t.Run("empty prints nothing", func(t *testing.T) {
		var b strings.Builder
		printSources(&b, nil)
		assert.Empty(t, b.String())
	})

	t.Run("unknown source", func(t *testing.T) {
		var b strings.Builder
		printSources(&b, []domain.Passage{{Score: 0.5}})
		assert.Contains(t, b.String(), "[1] unknown source (0.50)")
	})
}

func TestPassageOutputs(t *testing.T) {
	out := passageOutputs([]domain.Passage{{
		ID:       "p9",
		Text:     "Pricing",
		Score:    0.71,
		Metadata: domain.PassageMetadata{Source: "contract.pdf", Page: 12},
	}})

	require.Len(t, out, 1)
	assert.Equal(t, passageOutput{ID: "p9", Citation: "contract.pdf, p. 12", Score: 0.71, Text: "Pricing"}, out[0])
	assert.NotNil(t, passageOutputs(nil))
}
