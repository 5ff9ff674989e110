package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

func seeded(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex()
	err := idx.Upsert(
		[]domain.Passage{
			{ID: "ford", Text: "Ford Maverick XL $23,690"},
			{ID: "toyota", Text: "Toyota Corolla LE $21,450"},
			{ID: "chevy", Text: "Chevrolet Silverado 1500 $36,300"},
		},
		[][]float32{{1, 0, 0}, {0.8, 0.6, 0}, {0, 0, 1}},
	)
	require.NoError(t, err)
	return idx
}

func TestIndex_Search_OrdersByCosine(t *testing.T) {
	idx := seeded(t)

	hits, err := idx.Search(context.Background(), []float32{2, 0, 0}, 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "ford", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "toyota", hits[1].ID)
	assert.InDelta(t, 0.8, hits[1].Score, 1e-6)
	assert.Equal(t, "Toyota Corolla LE $21,450", hits[1].Passage.Text)
}

func TestIndex_Search_KLargerThanIndex(t *testing.T) {
	idx := seeded(t)

	hits, err := idx.Search(context.Background(), []float32{0, 0, 1}, 10)

	require.NoError(t, err)
	assert.Len(t, hits, 3)
	assert.Equal(t, "chevy", hits[0].ID)
}

func TestIndex_Search_EdgeCases(t *testing.T) {
	idx := seeded(t)

	hits, err := NewIndex().Search(context.Background(), []float32{1}, 2)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(context.Background(), []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = idx.Search(context.Background(), []float32{1, 0}, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = idx.Search(ctx, []float32{1, 0, 0}, 2)
	assert.ErrorIs(t, err, context.Canceled)

	hits, err = idx.Search(context.Background(), []float32{0, 0, 0}, 1)
	require.NoError(t, err)
	assert.Zero(t, hits[0].Score)
}

func TestIndex_Upsert(t *testing.T) {
	idx := seeded(t)

	err := idx.Upsert([]domain.Passage{{ID: "ford", Text: "Ford Maverick XLT $26,000"}}, [][]float32{{0, 1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	hits, err := idx.Search(context.Background(), []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ford Maverick XLT $26,000", hits[0].Passage.Text)

	err = idx.Upsert([]domain.Passage{{Text: "no id"}}, [][]float32{{1, 1, 1}})
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Len())

	assert.ErrorIs(t, idx.Upsert([]domain.Passage{{ID: "x"}}, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, idx.Upsert([]domain.Passage{{ID: "x"}}, [][]float32{{1, 2}}), domain.ErrInvalidInput)
	assert.ErrorIs(t, idx.Upsert([]domain.Passage{{ID: "x"}}, [][]float32{{}}), domain.ErrInvalidInput)
}

func TestIndex_Upsert_RejectedBatchLeavesIndexUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		index    func(t *testing.T) *Index
		passages []domain.Passage
		vectors  [][]float32
		wantLen  int
		wantDim  int
	}{
		{
			name:     "dimension mismatch after valid passages",
			index:    seeded,
			passages: []domain.Passage{{ID: "kia", Text: "Kia Niro"}, {ID: "vw", Text: "VW ID.4"}},
			vectors:  [][]float32{{0, 1, 0}, {0, 1}},
			wantLen:  3,
			wantDim:  3,
		},
		{
			name:     "empty vector in the middle",
			index:    seeded,
			passages: []domain.Passage{{ID: "ford", Text: "replaced"}, {ID: "vw"}},
			vectors:  [][]float32{{0, 1, 0}, {}},
			wantLen:  3,
			wantDim:  3,
		},
		{
			name:     "first batch into an empty index",
			index:    func(*testing.T) *Index { return NewIndex() },
			passages: []domain.Passage{{ID: "a"}, {ID: "b"}},
			vectors:  [][]float32{{1, 0}, {1, 0, 0}},
			wantLen:  0,
			wantDim:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := tt.index(t)

			err := idx.Upsert(tt.passages, tt.vectors)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, tt.wantLen, idx.Len())
			assert.Equal(t, tt.wantDim, idx.Dimension())
		})
	}

	idx := seeded(t)
	require.Error(t, idx.Upsert([]domain.Passage{{ID: "ford", Text: "replaced"}, {ID: "vw"}}, [][]float32{{0, 1, 0}, {1}}))
	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ford Maverick XL $23,690", hits[0].Passage.Text)
}

func TestIndex_Upsert_GeneratedIDsDoNotCollide(t *testing.T) {
	tests := []struct {
		name     string
		passages []domain.Passage
		wantIDs  []string
	}{
		{
			name:     "explicit ID later in the batch",
			passages: []domain.Passage{{Text: "first"}, {ID: "0", Text: "second"}},
			wantIDs:  []string{"0", "1"},
		},
		{
			name:     "explicit ID earlier in the batch",
			passages: []domain.Passage{{ID: "0", Text: "first"}, {Text: "second"}},
			wantIDs:  []string{"0", "1"},
		},
		{
			name:     "several without IDs",
			passages: []domain.Passage{{Text: "a"}, {ID: "1", Text: "b"}, {Text: "c"}},
			wantIDs:  []string{"0", "1", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewIndex()
			vectors := make([][]float32, len(tt.passages))
			for i := range vectors {
				vectors[i] = []float32{1, float32(i)}
			}

			require.NoError(t, idx.Upsert(tt.passages, vectors))

			assert.Equal(t, len(tt.passages), idx.Len())
			hits, err := idx.Search(context.Background(), []float32{1, 0}, len(tt.passages))
			require.NoError(t, err)
			ids := make([]string, len(hits))
			for i, h := range hits {
				ids[i] = h.ID
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}

	idx := seeded(t)
	require.NoError(t, idx.Upsert([]domain.Passage{{ID: "3", Text: "taken"}}, [][]float32{{0, 1, 0}}))
	require.NoError(t, idx.Upsert([]domain.Passage{{Text: "generated"}}, [][]float32{{0, 1, 1}}))
	assert.Equal(t, 5, idx.Len())
}

func TestIndex_ConcurrentSearch(t *testing.T) {
	idx := seeded(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2)
			assert.NoError(t, err)
			assert.Len(t, hits, 2)
		}()
	}
	wg.Wait()
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	content := `[
		{"id":"p12","text":"Ford Maverick XL $23,690","source":"contract.pdf","page":12,"vector":[1,0]},
		{"id":"p14","text":"Toyota Corolla LE $21,450","source":"contract.pdf","page":14,"vector":[0,1]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	idx, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	assert.NoError(t, idx.Ping(context.Background()))

	hits, err := idx.Search(context.Background(), []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "contract.pdf, p. 14", hits[0].Passage.Citation())
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	mixed := filepath.Join(dir, "mixed.json")
	require.NoError(t, os.WriteFile(mixed, []byte(`[{"id":"a","text":"x","vector":[1,0]},{"id":"b","text":"y","vector":[1]}]`), 0o600))
	_, err = LoadFile(mixed)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
