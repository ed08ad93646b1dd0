// ABOUTME: Runs every ground-truth query through retrieval and scores the results
// ABOUTME: Retrieval failures are logged and scored as empty result lists

package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/harper/urban-lens/internal/models"
	"github.com/rs/zerolog"
)

// RetrievalDepth is how many records are fetched per query
const RetrievalDepth = 10

// Retriever returns the records most similar to a question
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]models.ScoredElement, error)
}

// Runner executes an evaluation against a retriever
type Runner struct {
	retriever Retriever
	log       zerolog.Logger
}

// NewRunner creates a runner over retriever
func NewRunner(retriever Retriever, lg zerolog.Logger) *Runner {
	return &Runner{retriever: retriever, log: lg}
}

// Collect retrieves image ids for every query in gt
func (r *Runner) Collect(ctx context.Context, gt *GroundTruth) map[QueryID][]string {
	results := make(map[QueryID][]string, len(gt.TestQueries))
	for _, q := range gt.TestQueries {
		hits, err := r.retriever.Retrieve(ctx, q.Query, RetrievalDepth)
		if err != nil {
			r.log.Warn().Err(err).Str("query_id", string(q.QueryID)).Msg("retrieval failed")
			results[q.QueryID] = []string{}
			continue
		}

		ids := make([]string, len(hits))
		for i, h := range hits {
			ids[i] = h.Metadata.ImageID
		}
		results[q.QueryID] = ids
		r.log.Debug().Str("query_id", string(q.QueryID)).Strs("retrieved", ids).Msg("retrieved")
	}
	return results
}

// Run collects and scores in one step
func (r *Runner) Run(ctx context.Context, gt *GroundTruth) Report {
	return Evaluate(gt, r.Collect(ctx, gt))
}

// ExportResults writes report as JSON to outputPath
func ExportResults(report Report, outputPath string) error {
	payload := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"report":    report,
	}

	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
