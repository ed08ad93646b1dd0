// ABOUTME: CLI command to measure retrieval quality against labelled queries
// ABOUTME: Reports precision@k, recall@k and MRR for the current index
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/harper/urban-lens/benchmarks/retrieval"
	"github.com/spf13/cobra"
)

var (
	evaluateGroundTruth string
	evaluateOutput      string
)

// NewEvaluateCmd creates the evaluate command
func NewEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate retrieval against labelled queries",
		Long: `Evaluate retrieval quality against a ground-truth file.

The file has the form
  {"test_queries": [{"query_id": 1, "query": "...", "ground_truth_image_ids": ["..."]}]}

Each query retrieves the top 10 images; precision and recall are
reported at k = 1, 3, 5 and 10 along with mean reciprocal rank.`,
		Args: cobra.NoArgs,
		RunE: runEvaluate,
		Example: `  urban-lens evaluate
  urban-lens evaluate --ground-truth data/evaluation_manifest.json --output results.json`,
	}

	cmd.Flags().StringVar(&evaluateGroundTruth, "ground-truth", "data/evaluation_manifest.json", "Ground-truth query file")
	cmd.Flags().StringVar(&evaluateOutput, "output", "", "Also write the report as JSON to this path")

	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	gt, err := retrieval.LoadGroundTruth(evaluateGroundTruth)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.LoadIndex(cmd.Context()); err != nil {
		return err
	}

	report := retrieval.NewRunner(a.Orchestrator, a.Log).Run(cmd.Context(), gt)

	if evaluateOutput != "" {
		if err := retrieval.ExportResults(report, evaluateOutput); err != nil {
			return err
		}
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	retrieval.PrintResults(cmd.OutOrStdout(), report)
	return nil
}
