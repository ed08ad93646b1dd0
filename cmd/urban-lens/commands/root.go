// ABOUTME: Root command and global flags for the urban-lens CLI
// ABOUTME: Registers subcommands and builds the shared logger and application
package commands

import (
	"fmt"

	"github.com/harper/urban-lens/internal/app"
	"github.com/harper/urban-lens/internal/config"
	"github.com/harper/urban-lens/internal/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██╗   ██╗██████╗ ██████╗  █████╗ ███╗   ██╗    ██╗     ███████╗███╗   ██╗███████╗
██║   ██║██╔══██╗██╔══██╗██╔══██╗████╗  ██║    ██║     ██╔════╝████╗  ██║██╔════╝
██║   ██║██████╔╝██████╔╝███████║██╔██╗ ██║    ██║     █████╗  ██╔██╗ ██║███████╗
██║   ██║██╔══██╗██╔══██╗██╔══██║██║╚██╗██║    ██║     ██╔══╝  ██║╚██╗██║╚════██║
╚██████╔╝██║  ██║██████╔╝██║  ██║██║ ╚████║    ███████╗███████╗██║ ╚████║███████║
 ╚═════╝ ╚═╝  ╚═╝╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═══╝    ╚══════╝╚══════╝╚═╝  ╚═══╝╚══════╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urban-lens",
		Short: "Ask questions about street-level images",
		Long: banner + `

Urban Lens captions street-level photos with a vision model, indexes
the captions as embeddings, and answers questions about urban safety,
sanitation and infrastructure from the most relevant images.

Typical flow:
  urban-lens verify                 check every image in the manifest exists
  urban-lens caption                describe each image and write the caption manifest
  urban-lens ask "Where is there flooding?"
  urban-lens serve                  answer questions over HTTP`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print warnings and errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, json)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewCaptionCmd())
	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewEvaluateCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// newLogger builds the process logger on the command's stderr
func newLogger(cmd *cobra.Command) zerolog.Logger {
	return logging.New(cmd.ErrOrStderr(), verbose, quiet)
}

// loadConfig reads .env and the environment
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newApp loads configuration and wires the application for a command
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, newLogger(cmd))
}
