package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

func TestPromptsList(t *testing.T) {
	for _, args := range [][]string{{"prompts"}, {"prompts", "list"}} {
		_, cleanup := setupTestServices()

		out, err := execute(t, args...)
		require.NoError(t, err)
		assert.Contains(t, out, "Prompts:")
		assert.Contains(t, out, "/tmp/prompts/condense_question.txt")
		assert.Contains(t, out, "/tmp/prompts/qa.txt")

		cleanup()
	}
}

func TestPromptsShow(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "prompts", "show", driven.PromptQA)
	require.NoError(t, err)
	assert.Equal(t, "{question} {context}\n", out)
}

func TestPromptsShow_UnknownName(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "prompts", "show", "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown prompt "summary"`)
}

func TestPromptsReset(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "prompts", "reset", driven.PromptCondenseQuestion)
	require.NoError(t, err)

	assert.Equal(t, []string{driven.PromptCondenseQuestion}, ts.prompts.reset)
	assert.Contains(t, out, "Reset condense_question to its built-in text.")
}

func TestPromptsPath(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "prompts", "path")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/prompts\n", out)
}

func TestPromptsCmds_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	_, err := execute(t, "prompts", "path")
	assert.EqualError(t, err, "prompt store not configured")
}
