// ABOUTME: Version command for the urban-lens CLI
// ABOUTME: Prints build information and the configured models, as text or JSON
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var versionInfo = VersionInfo{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
}

// VersionInfo is the build stamp set by main
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// modelInfo names the models a caption manifest and its index depend on.
// Answers are only meaningful when the embedding model matches the one used at ingest.
type modelInfo struct {
	Chat      string `json:"chat"`
	Vision    string `json:"vision"`
	Embedding string `json:"embedding"`
}

// SetVersion records the build stamp
func SetVersion(version, commit, date string) {
	versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and model information",
		Long: `Display the build version, commit and date of urban-lens, followed by
the chat, vision and embedding models the current environment selects.`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	var models *modelInfo
	if cfg, err := loadConfig(); err == nil {
		models = &modelInfo{Chat: cfg.ChatModel, Vision: cfg.VisionModel, Embedding: cfg.EmbeddingModel}
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		data, err := json.MarshalIndent(struct {
			VersionInfo
			Models *modelInfo `json:"models,omitempty"`
		}{versionInfo, models}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	}

	fmt.Fprintf(out, "Urban Lens %s\n", versionInfo.Version)
	fmt.Fprintf(out, "Commit: %s\n", versionInfo.Commit)
	fmt.Fprintf(out, "Built:  %s\n", versionInfo.Date)
	if models != nil {
		fmt.Fprintf(out, "Models: chat=%s vision=%s embedding=%s\n", models.Chat, models.Vision, models.Embedding)
	}
	return nil
}
