// ABOUTME: CLI command to index a caption manifest and report the result
// ABOUTME: Useful for checking a manifest before serving it
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestManifest string

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index a caption manifest and report failures",
		Long: `Embed every record of a caption manifest and report how many were indexed.

Records without an image_id or caption, and records whose embedding
fails, are listed and skipped. The index lives in memory only, so this
is a dry run of what ask, serve and mcp do at startup.

Examples:
  urban-lens ingest
  urban-lens ingest --manifest data/caption_manifest.json --format json`,
		Args: cobra.NoArgs,
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestManifest, "manifest", "", "Caption manifest to index (default LENS_MANIFEST)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if ingestManifest != "" {
		a.Config.ManifestPath = ingestManifest
	}

	report, err := a.LoadIndex(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		failures := make([]map[string]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			failures = append(failures, map[string]string{"image_id": f.ImageID, "image": f.Image, "error": f.Err.Error()})
		}
		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"indexed":   report.Indexed,
			"dimension": a.Index.Dimension(),
			"failures":  failures,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	for _, f := range report.Failures {
		fmt.Fprintf(cmd.OutOrStdout(), "SKIPPED %s\n", f)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d records (dimension %d)\n", report.Indexed, a.Index.Dimension())
	return nil
}
