package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Retriever embeds a query and fetches the nearest passages from the index.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	k        int
}

// NewRetriever creates a retriever returning k passages per query.
// A k of zero or less falls back to domain.DefaultRetrievalK.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, k int) (*Retriever, error) {
	if index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}
	return &Retriever{embedder: embedder, index: index, k: k}, nil
}

// K returns the number of passages requested per query.
func (r *Retriever) K() int {
	return r.k
}

// Retrieve returns up to K passages for query, most similar first.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.Passage, error) {
	return r.RetrieveK(ctx, query, r.k)
}

// RetrieveK is Retrieve with an explicit passage count.
func (r *Retriever) RetrieveK(ctx context.Context, query string, k int) ([]domain.Passage, error) {
	logger.Debug("Retrieve: query=%q, k=%d", query, k)

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := r.index.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Index returned %d hits", len(hits))

	passages := make([]domain.Passage, 0, len(hits))
	for _, hit := range hits {
		p := hit.Passage
		if p.ID == "" {
			p.ID = hit.ID
		}
		p.Score = hit.Score
		passages = append(passages, p)
	}
	return passages, nil
}
