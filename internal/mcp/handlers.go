// ABOUTME: MCP tool handler implementations for the urban-lens server
// ABOUTME: Tool failures are returned as error results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/urban-lens/internal/core"
	"github.com/harper/urban-lens/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// Lens is the question-answering surface the tools call into
type Lens interface {
	Ask(ctx context.Context, question string, k int) (*models.Answer, error)
	Record(imageID string) (models.Metadata, bool)
	IndexSize() int
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	lens     Lens
	defaultK int
	log      zerolog.Logger
}

// NewHandlers creates tool handlers backed by lens
func NewHandlers(lens Lens, defaultK int, lg zerolog.Logger) *Handlers {
	if defaultK < 1 {
		defaultK = 3
	}
	return &Handlers{lens: lens, defaultK: defaultK, log: lg}
}

// Ask handles the ask tool
func (h *Handlers) Ask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	k := request.GetInt("k", h.defaultK)

	answer, err := h.lens.Ask(ctx, question, k)
	if err != nil {
		h.log.Warn().Err(err).Str("tool", "ask").Msg("tool failed")
		if errors.Is(err, core.ErrIndexNotReady) {
			return mcp.NewToolResultError("index not loaded: run caption and ingest first"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"response": answer.Response,
		"sources":  answer.Sources,
	})
}

// GetRecord handles the get_record tool
func (h *Handlers) GetRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	imageID, err := request.RequireString("image_id")
	if err != nil {
		return mcp.NewToolResultError("image_id argument is required and must be a string"), nil
	}

	record, ok := h.lens.Record(imageID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no record with image_id %q", imageID)), nil
	}

	return jsonResult(map[string]interface{}{
		"record": record,
	})
}

// IndexStatus handles the index_status tool
func (h *Handlers) IndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	size := h.lens.IndexSize()
	return jsonResult(map[string]interface{}{
		"indexed": size,
		"ready":   size > 0,
	})
}

func jsonResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
