// ABOUTME: CLI command to answer a question from the caption manifest
// ABOUTME: Loads the index, retrieves the top-k images and prints the answer with sources
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/urban-lens/internal/models"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	askK        int
	askManifest string
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the indexed images",
		Long: `Answer a question from the captioned images.

Indexes the caption manifest, retrieves the images most similar to
the question and asks the chat model to answer from their captions,
tags and locations only.

Examples:
  urban-lens ask "Where is there flooding?"
  urban-lens ask --k 5 "Which sidewalks are blocked?"
  urban-lens ask --format json "Where is trash piling up?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().IntVar(&askK, "k", 0, "Number of images to retrieve (default LENS_TOP_K)")
	cmd.Flags().StringVar(&askManifest, "manifest", "", "Caption manifest to index (default LENS_MANIFEST)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if askManifest != "" {
		a.Config.ManifestPath = askManifest
	}
	k := a.Config.TopK
	if cmd.Flags().Changed("k") {
		if err := validateK(askK); err != nil {
			return err
		}
		k = askK
	}

	if _, err := a.LoadIndex(cmd.Context()); err != nil {
		return err
	}

	answer, err := a.Orchestrator.Ask(cmd.Context(), question, k)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", answer.Response)
	printSources(cmd, answer.Sources)
	return nil
}

// printSources renders retrieved records as a table
func printSources(cmd *cobra.Command, sources []models.Metadata) {
	if len(sources) == 0 {
		return
	}
	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader([]string{"#", "Image ID", "Location", "Caption", "Tags"})
	for i, s := range sources {
		tw.Append(sourceRow(i+1, s))
	}
	tw.Render()
}
