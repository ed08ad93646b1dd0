// ABOUTME: CLI command to caption every image in the image manifest
// ABOUTME: Writes the caption manifest and reports per-image failures
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/harper/urban-lens/internal/core"
	"github.com/spf13/cobra"
)

var (
	captionInput     string
	captionOutput    string
	captionImageRoot string
	captionUseCache  bool
)

// NewCaptionCmd creates the caption command
func NewCaptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caption",
		Short: "Caption images with the vision model",
		Long: `Caption every image in the image manifest with the vision model.

Each image gets a one-sentence caption and a list of tags focused on
urban safety, sanitation and infrastructure. Images that already have a
caption and tags are kept as they are. Images that are missing or whose
model output cannot be parsed are reported and left out of the output.

With --cache (or LENS_CAPTION_CACHE=true) captions are stored in Charm
so re-runs skip images that were already described.

Examples:
  urban-lens caption
  urban-lens caption --input data/image_manifest.json --output data/caption_manifest.json
  urban-lens caption --cache`,
		Args: cobra.NoArgs,
		RunE: runCaption,
	}

	cmd.Flags().StringVar(&captionInput, "input", "", "Image manifest to caption (default LENS_IMAGE_MANIFEST)")
	cmd.Flags().StringVar(&captionOutput, "output", "", "Caption manifest to write (default LENS_MANIFEST)")
	cmd.Flags().StringVar(&captionImageRoot, "image-root", "", "Directory relative image paths are resolved against")
	cmd.Flags().BoolVar(&captionUseCache, "cache", false, "Reuse and store captions in the Charm caption cache")

	return cmd
}

func runCaption(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	input := captionInput
	if input == "" {
		input = a.Config.ImageManifestPath
	}
	output := captionOutput
	if output == "" {
		output = a.Config.ManifestPath
	}
	if captionUseCache {
		a.Config.CaptionCache = true
	}

	records, err := core.LoadManifest(input)
	if err != nil {
		return err
	}

	a.Ingestor.SetImageRoot(captionImageRoot)
	if err := a.EnableCaptioning(); err != nil {
		return err
	}

	report := a.Ingestor.CaptionManifest(cmd.Context(), records)
	if err := core.WriteManifest(output, report.Records); err != nil {
		return err
	}

	if outputFormat == "json" {
		failures := make([]map[string]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			failures = append(failures, map[string]string{"image": f.Image, "error": f.Err.Error()})
		}
		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"output":    output,
			"captioned": len(report.Records),
			"failures":  failures,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	for _, f := range report.Failures {
		fmt.Fprintf(cmd.OutOrStdout(), "FAILED %s\n", f)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Captioned %d of %d images, wrote %s\n", len(report.Records), len(records), output)
	}
	return nil
}
