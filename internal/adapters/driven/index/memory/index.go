// Package memory provides an in-process vector index using brute-force cosine similarity.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type entry struct {
	passage domain.Passage
	vector  []float32
	norm    float64
}

// Index stores passages and their vectors in memory.
// All vectors must share one dimension, fixed by the first upsert.
type Index struct {
	mu      sync.RWMutex
	dim     int
	entries []entry
	byID    map[string]int
	nextID  int
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{byID: make(map[string]int)}
}

// Record is the on-disk form of one indexed passage.
type Record struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Source string    `json:"source,omitempty"`
	Page   int       `json:"page,omitempty"`
	Vector []float32 `json:"vector"`
}

// LoadFile creates an index from a JSON array of records.
func LoadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse index file %s: %w", path, err)
	}

	passages := make([]domain.Passage, len(records))
	vectors := make([][]float32, len(records))
	for i, r := range records {
		passages[i] = domain.Passage{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: domain.PassageMetadata{Source: r.Source, Page: r.Page},
		}
		vectors[i] = r.Vector
	}

	idx := NewIndex()
	if err := idx.Upsert(passages, vectors); err != nil {
		return nil, fmt.Errorf("load index file %s: %w", path, err)
	}
	return idx, nil
}

// Upsert adds or replaces passages by ID. Passages without an ID are
// assigned the next free numeric ID. The batch is checked in full before
// any passage is stored, so a rejected batch leaves the index unchanged.
func (x *Index) Upsert(passages []domain.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("%w: %d passages but %d vectors", domain.ErrInvalidInput, len(passages), len(vectors))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dim
	explicit := make(map[string]struct{}, len(passages))
	for i, p := range passages {
		v := vectors[i]
		if len(v) == 0 {
			return fmt.Errorf("%w: empty vector for passage %q", domain.ErrInvalidInput, p.ID)
		}
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return fmt.Errorf("%w: vector dimension %d, index dimension %d", domain.ErrInvalidInput, len(v), dim)
		}
		if p.ID != "" {
			explicit[p.ID] = struct{}{}
		}
	}

	x.dim = dim
	for i, p := range passages {
		v := vectors[i]
		if p.ID == "" {
			p.ID = x.freeID(explicit)
		}
		e := entry{passage: p, vector: append([]float32(nil), v...), norm: norm(v)}
		if pos, ok := x.byID[p.ID]; ok {
			x.entries[pos] = e
			continue
		}
		x.byID[p.ID] = len(x.entries)
		x.entries = append(x.entries, e)
	}
	return nil
}

// freeID returns the next numeric ID not stored and not named in reserved.
// Callers hold x.mu.
func (x *Index) freeID(reserved map[string]struct{}) string {
	for {
		id := strconv.Itoa(x.nextID)
		x.nextID++
		if _, ok := x.byID[id]; ok {
			continue
		}
		if _, ok := reserved[id]; ok {
			continue
		}
		return id
	}
}

// Dimension returns the vector dimension of the index, or 0 while it is empty.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dim
}

// Len returns the number of stored passages.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Search returns the k passages most similar to query, highest score first.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d", domain.ErrInvalidInput, len(query), x.dim)
	}

	qn := norm(query)
	hits := make([]driven.VectorHit, len(x.entries))
	for i, e := range x.entries {
		hits[i] = driven.VectorHit{
			ID:      e.passage.ID,
			Score:   cosine(query, qn, e.vector, e.norm),
			Passage: e.passage,
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Ping always succeeds.
func (x *Index) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

func norm(v []float32) float64 {
	var s float64
	for _, f := range v {
		s += float64(f) * float64(f)
	}
	return math.Sqrt(s)
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
