// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Lets LLM agents ask questions about the indexed images via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/urban-lens/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs Urban Lens as an MCP (Model Context Protocol) server, giving
LLM agents the ask, get_record and index_status tools over stdio.

The caption manifest is indexed once at startup.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  urban-lens mcp

  # Configure in the client's config file:
  # {
  #   "mcpServers": {
  #     "urban-lens": {
  #       "command": "urban-lens",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.LoadIndex(cmd.Context()); err != nil {
		a.Log.Warn().Err(err).Msg("serving without an index")
	}

	server := mcpserver.NewMCPServer(
		"Urban Lens",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, a.Orchestrator, a.Config.TopK, a.Log.With().Str("component", "mcp").Logger())

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Log.Info().Int("indexed", a.Index.Len()).Msg("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.Log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
