// ABOUTME: Question answering over the image index
// ABOUTME: Embeds the question, retrieves top-k records, and asks the answer model
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/urban-lens/internal/models"
	"github.com/rs/zerolog"
)

// Orchestrator answers questions from indexed image records
type Orchestrator struct {
	embedder Embedder
	index    VectorIndex
	answerer AnswerModel
	log      zerolog.Logger
}

// NewOrchestrator creates an orchestrator. embedder must be the one used at ingestion.
func NewOrchestrator(embedder Embedder, index VectorIndex, answerer AnswerModel, lg zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		embedder: embedder,
		index:    index,
		answerer: answerer,
		log:      lg,
	}
}

// Ready reports whether the index holds anything to search
func (o *Orchestrator) Ready() bool {
	return o.index.Len() > 0
}

// IndexSize returns the number of indexed elements
func (o *Orchestrator) IndexSize() int {
	return o.index.Len()
}

// Record returns the metadata of the first indexed element with the given image ID
func (o *Orchestrator) Record(imageID string) (models.Metadata, bool) {
	e, ok := o.index.Get(imageID)
	if !ok {
		return models.Metadata{}, false
	}
	return e.Metadata, true
}

// Retrieve returns the k elements most similar to question
func (o *Orchestrator) Retrieve(ctx context.Context, question string, k int) ([]models.ScoredElement, error) {
	if !o.Ready() {
		return nil, ErrIndexNotReady
	}
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if k < 1 {
		return nil, ErrInvalidK
	}

	vector, err := o.embedder.Embed(ctx, question)
	if err != nil {
		return nil, &ModelInvocationError{Op: "embed question", Err: err}
	}
	if dim := o.index.Dimension(); len(vector) != dim {
		return nil, &ModelInvocationError{
			Op:  "embed question",
			Err: fmt.Errorf("%w: expected %d, got %d", ErrQueryDimension, dim, len(vector)),
		}
	}

	hits := o.index.Query(vector, k)
	o.log.Debug().Str("question", question).Int("k", k).Int("hits", len(hits)).Msg("retrieved")
	return hits, nil
}

// Ask answers question from the top-k retrieved records. Sources are returned
// in the order they were shown to the model.
func (o *Orchestrator) Ask(ctx context.Context, question string, k int) (*models.Answer, error) {
	hits, err := o.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(question, hits)
	response, err := o.answerer.Complete(ctx, analystPersona, prompt)
	if err != nil {
		return nil, &ModelInvocationError{Op: "generate answer", Err: err}
	}

	sources := make([]models.Metadata, len(hits))
	for i, h := range hits {
		sources[i] = h.Metadata
	}

	o.log.Info().Str("question", question).Int("sources", len(sources)).Msg("answered")
	return &models.Answer{
		Response: response,
		Sources:  sources,
	}, nil
}
