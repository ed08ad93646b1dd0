// ABOUTME: In-memory vector store with brute-force cosine similarity search
// ABOUTME: Holds one Element per indexed image for the lifetime of the process
package storage

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/harper/urban-lens/internal/models"
)

var (
	// ErrEmptyEmbedding is returned when an element has no vector
	ErrEmptyEmbedding = errors.New("embedding cannot be empty")
	// ErrDimensionMismatch is returned when an element's vector length differs from the store's
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// VectorStore is an append-only list of elements searched by full linear scan.
// IDs are not required to be unique: duplicates are kept and Get returns the first.
type VectorStore struct {
	mu        sync.RWMutex
	elements  []models.Element
	dimension int
}

// NewVectorStore creates an empty store. The first Add fixes the dimension.
func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

// Add appends an element to the store
func (vs *VectorStore) Add(element models.Element) error {
	if len(element.Embedding) == 0 {
		return fmt.Errorf("add %s: %w", element.ID, ErrEmptyEmbedding)
	}

	vs.mu.Lock()
	defer vs.mu.Unlock()

	if vs.dimension == 0 {
		vs.dimension = len(element.Embedding)
	} else if len(element.Embedding) != vs.dimension {
		return fmt.Errorf("add %s: %w: expected %d, got %d", element.ID, ErrDimensionMismatch, vs.dimension, len(element.Embedding))
	}

	vs.elements = append(vs.elements, element)
	return nil
}

// Get returns the first element with the given ID
func (vs *VectorStore) Get(id string) (models.Element, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	for _, e := range vs.elements {
		if e.ID == id {
			return e, true
		}
	}
	return models.Element{}, false
}

// Query returns up to k elements ordered by descending cosine similarity to vector.
// Equal scores keep insertion order.
func (vs *VectorStore) Query(vector []float64, k int) []models.ScoredElement {
	if k <= 0 {
		return nil
	}

	vs.mu.RLock()
	defer vs.mu.RUnlock()

	if len(vs.elements) == 0 {
		return nil
	}

	results := make([]models.ScoredElement, len(vs.elements))
	for i, e := range vs.elements {
		results[i] = models.ScoredElement{
			Element:    e,
			Similarity: cosineSimilarity(vector, e.Embedding),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Len returns the number of stored elements, duplicates included
func (vs *VectorStore) Len() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.elements)
}

// Dimension returns the embedding length fixed by the first insert, or 0 when empty
func (vs *VectorStore) Dimension() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.dimension
}

// All returns a copy of the stored elements in insertion order
func (vs *VectorStore) All() []models.Element {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	out := make([]models.Element, len(vs.elements))
	copy(out, vs.elements)
	return out
}

// cosineSimilarity calculates cosine similarity between two vectors.
// Zero-norm or mismatched vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
