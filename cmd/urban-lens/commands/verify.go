// ABOUTME: CLI command to check that every image in a manifest exists
// ABOUTME: Stops at the first missing file and exits non-zero
package commands

import (
	"fmt"

	"github.com/harper/urban-lens/internal/core"
	"github.com/spf13/cobra"
)

var (
	verifyManifest  string
	verifyImageRoot string
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every image in the manifest exists",
		Long: `Check that every image listed in the image manifest exists on disk.

Stops at the first missing file.

Examples:
  urban-lens verify
  urban-lens verify --manifest data/image_manifest.json --image-root /srv/photos`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}

	cmd.Flags().StringVar(&verifyManifest, "manifest", "", "Image manifest (default LENS_IMAGE_MANIFEST)")
	cmd.Flags().StringVar(&verifyImageRoot, "image-root", "", "Directory relative image paths are resolved against")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := verifyManifest
	if path == "" {
		path = cfg.ImageManifestPath
	}

	records, err := core.LoadManifest(path)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Manifest loaded: %d images.\n", len(records))
	}

	if err := core.VerifyManifest(records, verifyImageRoot); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "All images exist.")
	}
	return nil
}
