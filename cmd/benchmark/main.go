// ABOUTME: Command-line runner for retrieval evaluation
// ABOUTME: Scores the indexed caption manifest against labelled queries and writes JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harper/urban-lens/benchmarks/retrieval"
	"github.com/harper/urban-lens/internal/app"
	"github.com/harper/urban-lens/internal/config"
	"github.com/harper/urban-lens/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	groundTruth := flag.String("ground-truth", "data/evaluation_manifest.json", "Ground-truth query file")
	manifest := flag.String("manifest", "", "Caption manifest to index (default LENS_MANIFEST)")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	minMRR := flag.Float64("min-mrr", 0, "Exit non-zero when mean reciprocal rank falls below this")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	lg := logging.New(os.Stderr, *verbose, false)

	if err := godotenv.Load(); err != nil {
		lg.Debug().Err(err).Msg("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		lg.Fatal().Err(err).Msg("invalid configuration")
	}
	if *manifest != "" {
		cfg.ManifestPath = *manifest
	}

	gt, err := retrieval.LoadGroundTruth(*groundTruth)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to load ground truth")
	}

	a, err := app.New(cfg, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to initialize")
	}
	defer a.Close()

	ctx := context.Background()
	if _, err := a.LoadIndex(ctx); err != nil {
		lg.Fatal().Err(err).Msg("failed to index caption manifest")
	}

	report := retrieval.NewRunner(a.Orchestrator, lg).Run(ctx, gt)
	retrieval.PrintResults(os.Stdout, report)

	if err := retrieval.ExportResults(report, *outputPath); err != nil {
		lg.Fatal().Err(err).Msg("failed to export results")
	}
	fmt.Printf("\nResults exported to: %s\n", *outputPath)

	if report.AvgMRR < *minMRR {
		fmt.Printf("MRR %.3f is below the required %.3f\n", report.AvgMRR, *minMRR)
		os.Exit(1)
	}
}
