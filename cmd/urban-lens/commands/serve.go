// ABOUTME: Serve command starts the HTTP question-answering server
// ABOUTME: Indexes the caption manifest at startup and shuts down on SIGINT/SIGTERM
package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harper/urban-lens/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

Endpoints:
  POST /ask            {"question": "...", "k": 3} -> {"response", "sources"}
  GET  /images/:name   serve an image from LENS_IMAGE_DIR
  GET  /healthz        {"status", "indexed"}
  GET  /               liveness

If the caption manifest cannot be loaded the server still starts and
answers /ask with 503 until it is restarted with a manifest.`,
		Args: cobra.NoArgs,
		RunE: runServe,
		Example: `  urban-lens serve
  urban-lens serve --addr 127.0.0.1:8080`,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default LENS_ADDR)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = a.Config.Addr
	}

	if _, err := a.LoadIndex(cmd.Context()); err != nil {
		a.Log.Warn().Err(err).Msg("serving without an index")
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(a.Orchestrator, a.Config.ImageDir, a.Config.TopK, a.Log.With().Str("component", "http").Logger()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", addr).Int("indexed", a.Index.Len()).Msg("http server listening")
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.Log.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}
	return nil
}
