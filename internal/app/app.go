// ABOUTME: Wires configuration, model client, index and pipelines together
// ABOUTME: Shared by the CLI, the MCP server binary and the benchmark binary
package app

import (
	"context"
	"fmt"

	"github.com/harper/urban-lens/internal/charm"
	"github.com/harper/urban-lens/internal/config"
	"github.com/harper/urban-lens/internal/core"
	"github.com/harper/urban-lens/internal/llm"
	"github.com/harper/urban-lens/internal/storage"
	"github.com/rs/zerolog"
)

// App holds the long-lived components of one process
type App struct {
	Config       *config.Config
	Log          zerolog.Logger
	Client       *llm.OpenAIClient
	Index        *storage.VectorStore
	Ingestor     *core.Ingestor
	Orchestrator *core.Orchestrator

	charm *charm.Client
	cache *storage.CaptionCache
}

// New builds the model client, an empty index and the pipelines over them
func New(cfg *config.Config, lg zerolog.Logger) (*App, error) {
	client, err := llm.NewOpenAIClientWithConfig(llm.ConfigFrom(cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing model client: %w", err)
	}

	index := storage.NewVectorStore()
	ingestor := core.NewIngestor(client, index, lg.With().Str("component", "ingest").Logger())

	return &App{
		Config:       cfg,
		Log:          lg,
		Client:       client,
		Index:        index,
		Ingestor:     ingestor,
		Orchestrator: core.NewOrchestrator(client, index, client, lg.With().Str("component", "query").Logger()),
	}, nil
}

// LoadIndex ingests the caption manifest named in the configuration
func (a *App) LoadIndex(ctx context.Context) (core.IngestReport, error) {
	report, err := a.Ingestor.IngestFile(ctx, a.Config.ManifestPath)
	if err != nil {
		return report, fmt.Errorf("loading index: %w", err)
	}
	return report, nil
}

// EnableCaptioning attaches the vision model, and the Charm caption cache when configured
func (a *App) EnableCaptioning() error {
	a.Ingestor.SetCaptioner(core.NewCaptioner(a.Client, a.Log.With().Str("component", "caption").Logger()))

	if !a.Config.CaptionCache {
		return nil
	}
	cache, err := a.CaptionCache()
	if err != nil {
		return err
	}
	a.Ingestor.SetCaptionCache(cache)
	return nil
}

// CaptionCache opens the Charm-backed caption cache on first use
func (a *App) CaptionCache() (*storage.CaptionCache, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	client, err := a.Charm()
	if err != nil {
		return nil, err
	}
	a.cache = storage.NewCaptionCache(client)
	return a.cache, nil
}

// Charm opens the Charm KV client on first use
func (a *App) Charm() (*charm.Client, error) {
	if a.charm != nil {
		return a.charm, nil
	}
	client, err := charm.NewClient(&charm.Config{
		Host:     a.Config.CharmHost,
		DBName:   a.Config.CharmDBName,
		AutoSync: a.Config.AutoSync,
	})
	if err != nil {
		return nil, fmt.Errorf("opening caption cache: %w", err)
	}
	a.charm = client
	return client, nil
}

// Close releases the Charm client if one was opened
func (a *App) Close() error {
	if a.charm != nil {
		return a.charm.Close()
	}
	return nil
}
