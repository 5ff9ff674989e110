package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "file is only written on first update")
}

func TestNewConfigStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Update(map[string]any{
		"index.name":        "gpt35turbopdf",
		"chain.k":           2,
		"chain.temperature": 0.3,
	}))

	assert.Equal(t, "gpt35turbopdf", store.GetString("index.name"))
	assert.Equal(t, 2, store.GetInt("chain.k"))
	assert.InDelta(t, 0.3, store.GetFloat("chain.temperature"), 1e-9)

	// Wrong types and missing keys return zero values.
	assert.Empty(t, store.GetString("chain.k"))
	assert.Zero(t, store.GetInt("index.name"))
	assert.Zero(t, store.GetFloat("index.name"))
	assert.Zero(t, store.GetFloat("missing"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Update(map[string]any{
		"index.namespace":   "pdf-test",
		"chain.k":           2,
		"chain.temperature": 0.0,
	}))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "pdf-test", reopened.GetString("index.namespace"))
	assert.Equal(t, 2, reopened.GetInt("chain.k"))
	_, ok := reopened.Get("chain.temperature")
	assert.True(t, ok)
	assert.Zero(t, reopened.GetFloat("chain.temperature"))
}

func TestConfigStore_WritesTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Update(map[string]any{
		"index.backend": "pinecone",
		"chain.k":       2,
	}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[index]")
	assert.Contains(t, string(data), "[chain]")
	assert.NotContains(t, string(data), "index.backend")
}

func TestConfigStore_ReadsTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[index]
backend = "pinecone"
name = "gpt35turbopdf"

[chain]
k = 2
temperature = 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "pinecone", store.GetString("index.backend"))
	assert.Equal(t, "gpt35turbopdf", store.GetString("index.name"))
	assert.Equal(t, 2, store.GetInt("chain.k"))
	// Integer literal read as a float.
	assert.Zero(t, store.GetFloat("chain.temperature"))
	_, ok := store.Get("chain.temperature")
	assert.True(t, ok)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_UpdateNilRemoves(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Update(map[string]any{"llm.base_url": "http://localhost:11434", "llm.model": "llama3"}))

	require.NoError(t, store.Update(map[string]any{"llm.base_url": nil}))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok := reopened.Get("llm.base_url")
	assert.False(t, ok)
	assert.Equal(t, "llama3", reopened.GetString("llm.model"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Update(map[string]any{"index.api_key": "secret"}))

	info, err := os.Stat(store.Path())

	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_UpdateWriteErrorKeepsValues(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Update(map[string]any{"chain.k": 2}))

	// A directory in place of the file makes the rename fail.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(store.Path(), "block"), nil, 0600))

	assert.Error(t, store.Update(map[string]any{"chain.k": 4}))
	assert.Equal(t, 2, store.GetInt("chain.k"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Update(map[string]any{"chain.k": n})
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("chain.k")
		}()
	}
	wg.Wait()

	_, ok := store.Get("chain.k")
	assert.True(t, ok)
}

func TestNest(t *testing.T) {
	tree := nest(map[string]any{
		"index.name": "contracts",
		"index.host": "example.io",
		"top":        true,
	})

	assert.Equal(t, map[string]any{
		"index": map[string]any{"name": "contracts", "host": "example.io"},
		"top":   true,
	}, tree)

	flat := make(map[string]any)
	flatten(tree, "", flat)
	assert.Equal(t, map[string]any{"index.name": "contracts", "index.host": "example.io", "top": true}, flat)
}
