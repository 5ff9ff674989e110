package driven

import (
	"context"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// VectorIndex provides similarity search over the ingested contract.
// The index is read-only from this application's point of view; ingestion
// happens elsewhere.
type VectorIndex interface {
	// Search returns up to k passages nearest to the query vector,
	// ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Ping validates the index is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the index-assigned vector identifier.
	ID string

	// Score is the similarity score (higher is closer).
	Score float64

	// Passage holds the stored text and metadata.
	Passage domain.Passage
}
