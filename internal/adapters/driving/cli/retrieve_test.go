package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

func TestRetrieveCmd_PrintsPassages(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "retrieve", "contract", "term")
	require.NoError(t, err)

	assert.Equal(t, []string{"contract term"}, ts.chat.queries)
	assert.Contains(t, out, "[1] contract.pdf, p. 3 (0.92)")
	assert.Contains(t, out, "    This Agreement shall remain in effect")
	assert.Empty(t, ts.chat.requests)
}

func TestRetrieveCmd_NoPassages(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.chat.sources = nil

	out, err := execute(t, "retrieve", "warranty")
	require.NoError(t, err)
	assert.Contains(t, out, "No passages found.")
}

func TestRetrieveCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "retrieve", "--json", "term")
	require.NoError(t, err)

	var got []passageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestRetrieveCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.chat.err = domain.ErrVectorIndexUnavailable

	_, err := execute(t, "retrieve", "term")
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestRetrieveCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute(t, "retrieve", "term")
	assert.EqualError(t, err, "chat service not configured")
}
