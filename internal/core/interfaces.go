// ABOUTME: Collaborator interfaces injected into ingestion and question answering
// ABOUTME: Real implementations live in llm and storage; tests use stubs
package core

import (
	"context"

	"github.com/harper/urban-lens/internal/models"
)

// Embedder maps text to a fixed-length vector. Ingestion and queries must share one.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VisionModel describes images
type VisionModel interface {
	DescribeImage(ctx context.Context, instruction, imagePath string) (string, error)
	Warm(ctx context.Context) error
}

// AnswerModel generates text from a system persona and a user prompt
type AnswerModel interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// VectorIndex stores elements and answers top-k similarity queries
type VectorIndex interface {
	Add(element models.Element) error
	Get(id string) (models.Element, bool)
	Query(vector []float64, k int) []models.ScoredElement
	Len() int
	Dimension() int
}

// CaptionCache remembers captions per image path across runs
type CaptionCache interface {
	Lookup(imagePath string) (models.Caption, bool)
	Store(imagePath string, caption models.Caption) error
}
