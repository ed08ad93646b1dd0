// ABOUTME: MCP tool definitions and registration for the urban-lens server
// ABOUTME: Exposes question answering and record lookup over the image index
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, lens Lens, defaultK int, lg zerolog.Logger) *Handlers {
	handlers := NewHandlers(lens, defaultK, lg)

	// 1. ask - answer a question from the indexed image records
	server.AddTool(mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about urban conditions using the most relevant captioned street images. Returns the answer and the image records it was based on.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question about the photographed locations",
				},
				"k": map[string]interface{}{
					"type":        "number",
					"description": "Number of image records to retrieve (default: 3)",
					"default":     defaultK,
				},
			},
			Required: []string{"question"},
		},
	}, handlers.Ask)

	// 2. get_record - fetch one indexed image record
	server.AddTool(mcp.Tool{
		Name:        "get_record",
		Description: "Get the caption, tags and location of an indexed image by its image_id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"image_id": map[string]interface{}{
					"type":        "string",
					"description": "image_id from the caption manifest",
				},
			},
			Required: []string{"image_id"},
		},
	}, handlers.GetRecord)

	// 3. index_status - report whether the index is loaded
	server.AddTool(mcp.Tool{
		Name:        "index_status",
		Description: "Report how many image records are indexed and whether questions can be answered.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.IndexStatus)

	return handlers
}
