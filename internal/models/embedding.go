// ABOUTME: Element model pairing an embedding vector with image metadata
// ABOUTME: Defines Element and ScoredElement structures for the vector store
package models

import "fmt"

// Element is one entry of the vector store. ID mirrors Metadata.ImageID.
type Element struct {
	ID        string    `json:"id"`
	Embedding []float64 `json:"embedding"`
	Metadata  Metadata  `json:"metadata"`
}

// ScoredElement is a query hit with its cosine similarity
type ScoredElement struct {
	Element
	Similarity float64 `json:"similarity"`
}

// ValidateDimension checks that the embedding has the expected length
func (e Element) ValidateDimension(expected int) error {
	if len(e.Embedding) == 0 {
		return fmt.Errorf("embedding for %s cannot be empty", e.ID)
	}
	if len(e.Embedding) != expected {
		return fmt.Errorf("embedding dimension mismatch for %s: expected %d, got %d", e.ID, expected, len(e.Embedding))
	}
	return nil
}
