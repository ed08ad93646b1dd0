// ABOUTME: Main entry point for the urban-lens MCP server with stdio transport
// ABOUTME: Indexes the caption manifest and registers the MCP tools
package main

import (
	"context"
	"os"

	"github.com/harper/urban-lens/internal/app"
	"github.com/harper/urban-lens/internal/config"
	"github.com/harper/urban-lens/internal/logging"
	"github.com/harper/urban-lens/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	// stdout carries the protocol, so logs go to stderr
	lg := logging.New(os.Stderr, false, false)

	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		lg.Debug().Err(err).Msg("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		lg.Fatal().Err(err).Msg("invalid configuration")
	}

	a, err := app.New(cfg, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to initialize")
	}
	defer a.Close()

	if _, err := a.LoadIndex(context.Background()); err != nil {
		lg.Warn().Err(err).Msg("serving without an index")
	}

	server := mcpserver.NewMCPServer(
		"Urban Lens",
		"0.1.0",
	)
	mcp.RegisterTools(server, a.Orchestrator, cfg.TopK, lg.With().Str("component", "mcp").Logger())

	lg.Info().Int("indexed", a.Index.Len()).Msg("MCP server starting on stdio")
	if err := mcpserver.ServeStdio(server); err != nil {
		lg.Fatal().Err(err).Msg("server error")
	}
}
