package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
	assert.Equal(t, filepath.Join(dir, "qa.txt"), store.Path(driven.PromptQA))
}

func TestNewPromptStore_NoIO(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	_, err := NewPromptStore(dir)

	require.NoError(t, err)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptQA)
	require.NoError(t, err)

	for _, f := range []string{"condense_question.txt", "qa.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestDefaultPrompts_AreValidTemplates(t *testing.T) {
	required := map[string][]string{
		driven.PromptCondenseQuestion: {domain.PlaceholderChatHistory, domain.PlaceholderQuestion},
		driven.PromptQA:               {domain.PlaceholderQuestion, domain.PlaceholderContext},
	}

	for _, name := range driven.PromptNames() {
		t.Run(name, func(t *testing.T) {
			text, ok := DefaultPrompt(name)
			require.True(t, ok)

			tmpl, err := domain.NewPromptTemplate(name, text)
			require.NoError(t, err)
			assert.NoError(t, tmpl.Require(required[name]...))
		})
	}
}

func TestDefaultPrompt_QAContent(t *testing.T) {
	text, ok := DefaultPrompt(driven.PromptQA)

	require.True(t, ok)
	assert.Contains(t, text, "Florida State Term Contract")
	assert.Contains(t, text, `just say "Hmm, I'm not sure."`)
	assert.Contains(t, text, "Question: {question}\n=========\n{context}\n=========\nAnswer in Markdown:")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Question: {question}\nContext: {context}\nAnswer:"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa.txt"), []byte("\n"+custom+"\n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	got, err := store.Load(driven.PromptQA)

	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptQA)
	require.NoError(t, err)
	require.NoError(t, os.Remove(store.Path(driven.PromptCondenseQuestion)))
	require.NoError(t, os.WriteFile(store.Path(driven.PromptQA), []byte("   \n"), 0600))
	store.Reload()

	condense, err := store.Load(driven.PromptCondenseQuestion)
	require.NoError(t, err)
	want, _ := DefaultPrompt(driven.PromptCondenseQuestion)
	assert.Equal(t, want, condense)

	qa, err := store.Load(driven.PromptQA)
	require.NoError(t, err)
	want, _ = DefaultPrompt(driven.PromptQA)
	assert.Equal(t, want, qa)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent")

	assert.Error(t, err)
}

func TestPromptStore_InitFailure_UsesDefaults(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	got, err := store.Load(driven.PromptQA)
	require.NoError(t, err)
	want, _ := DefaultPrompt(driven.PromptQA)
	assert.Equal(t, want, got)

	_, err = store.Load("nonexistent")
	assert.Error(t, err)
}

func TestPromptStore_Reload_PicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptQA)
	require.NoError(t, err)

	edited := "Q: {question}\n{context}"
	require.NoError(t, os.WriteFile(store.Path(driven.PromptQA), []byte(edited), 0600))

	cached, err := store.Load(driven.PromptQA)
	require.NoError(t, err)
	assert.Equal(t, first, cached, "cached until reload")

	store.Reload()
	fresh, err := store.Load(driven.PromptQA)
	require.NoError(t, err)
	assert.Equal(t, edited, fresh)
}

func TestPromptStore_Reset(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(driven.PromptQA), []byte("Q: {question}\n{context}"), 0600))

	require.NoError(t, store.Reset(driven.PromptQA))

	got, err := store.Load(driven.PromptQA)
	require.NoError(t, err)
	want, _ := DefaultPrompt(driven.PromptQA)
	assert.Equal(t, want, got)

	assert.Error(t, store.Reset("nonexistent"))
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := "History: {chat_history}\nQ: {question}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "condense_question.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, err = store.Load(driven.PromptQA)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "condense_question.txt"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := driven.PromptNames()[i%2]
			got, err := store.Load(name)
			assert.NoError(t, err)
			assert.NotEmpty(t, got)
			if i%5 == 0 {
				store.Reload()
			}
		}(i)
	}
	wg.Wait()
}
