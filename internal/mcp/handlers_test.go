// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Uses a fake lens so no model or index is needed
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/harper/urban-lens/internal/core"
	"github.com/harper/urban-lens/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

type fakeLens struct {
	answer   *models.Answer
	err      error
	records  map[string]models.Metadata
	size     int
	gotK     int
	gotQuery string
}

func (f *fakeLens) Ask(ctx context.Context, question string, k int) (*models.Answer, error) {
	f.gotQuery = question
	f.gotK = k
	return f.answer, f.err
}

func (f *fakeLens) Record(imageID string) (models.Metadata, bool) {
	m, ok := f.records[imageID]
	return m, ok
}

func (f *fakeLens) IndexSize() int { return f.size }

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestAsk(t *testing.T) {
	lens := &fakeLens{answer: &models.Answer{
		Response: "Flooding in Riverside.",
		Sources:  []models.Metadata{{ImageID: "1", Caption: "Flooded street", Location: "Riverside"}},
	}}
	h := NewHandlers(lens, 3, zerolog.Nop())

	result, err := h.Ask(context.Background(), callRequest(map[string]any{"question": "Where is there flooding?", "k": float64(1)}))
	if err != nil {
		t.Fatalf("Ask returned protocol error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Ask returned error result: %s", resultText(t, result))
	}
	if lens.gotK != 1 {
		t.Errorf("k = %d, want 1", lens.gotK)
	}

	var payload struct {
		Response string            `json:"response"`
		Sources  []models.Metadata `json:"sources"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if payload.Response != "Flooding in Riverside." {
		t.Errorf("response = %q", payload.Response)
	}
	if len(payload.Sources) != 1 || payload.Sources[0].ImageID != "1" {
		t.Errorf("sources = %+v, want image 1", payload.Sources)
	}
}

func TestAsk_DefaultK(t *testing.T) {
	lens := &fakeLens{answer: &models.Answer{}}
	h := NewHandlers(lens, 4, zerolog.Nop())

	if _, err := h.Ask(context.Background(), callRequest(map[string]any{"question": "q"})); err != nil {
		t.Fatal(err)
	}
	if lens.gotK != 4 {
		t.Errorf("k = %d, want default 4", lens.gotK)
	}
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		err  error
	}{
		{"missing question", map[string]any{}, nil},
		{"not ready", map[string]any{"question": "q"}, core.ErrIndexNotReady},
		{"model failure", map[string]any{"question": "q"}, errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(&fakeLens{err: tt.err}, 3, zerolog.Nop())
			result, err := h.Ask(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("protocol error: %v", err)
			}
			if !result.IsError {
				t.Error("expected error result")
			}
		})
	}
}

func TestGetRecord(t *testing.T) {
	lens := &fakeLens{records: map[string]models.Metadata{
		"1": {ImageID: "1", Caption: "Flooded street"},
	}}
	h := NewHandlers(lens, 3, zerolog.Nop())

	result, _ := h.GetRecord(context.Background(), callRequest(map[string]any{"image_id": "1"}))
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	result, _ = h.GetRecord(context.Background(), callRequest(map[string]any{"image_id": "nope"}))
	if !result.IsError {
		t.Error("missing record should be an error result")
	}
}

func TestIndexStatus(t *testing.T) {
	h := NewHandlers(&fakeLens{size: 2}, 3, zerolog.Nop())

	result, _ := h.IndexStatus(context.Background(), callRequest(nil))
	var payload struct {
		Indexed int  `json:"indexed"`
		Ready   bool `json:"ready"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Indexed != 2 || !payload.Ready {
		t.Errorf("status = %+v, want 2 ready", payload)
	}
}

func TestRegisterTools(t *testing.T) {
	server := mcpserver.NewMCPServer("test", "0.0.0")
	if h := RegisterTools(server, &fakeLens{}, 3, zerolog.Nop()); h == nil {
		t.Fatal("RegisterTools returned nil handlers")
	}
}
