package domain

import "fmt"

// PassageMetadata describes where a passage came from.
type PassageMetadata struct {
	// Source is the originating file, typically the contract PDF path.
	Source string

	// Page is the 1-based page number, or 0 when unknown.
	Page int

	// Extra holds any remaining metadata returned by the index.
	Extra map[string]any
}

// Passage is a retrieved excerpt of source text.
type Passage struct {
	// ID is the index-assigned identifier.
	ID string

	// Text is the excerpt content passed to the model verbatim.
	Text string

	// Score is the similarity score reported by the index (higher is closer).
	Score float64

	// Metadata locates the passage within its source document.
	Metadata PassageMetadata
}

// Citation returns a short human-readable reference such as "contract.pdf, p. 4".
func (p Passage) Citation() string {
	source := p.Metadata.Source
	if source == "" {
		source = "unknown source"
	}
	if p.Metadata.Page > 0 {
		return fmt.Sprintf("%s, p. %d", source, p.Metadata.Page)
	}
	return source
}
