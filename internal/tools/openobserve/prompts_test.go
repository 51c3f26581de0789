package openobserve

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func TestRegisterOpenObservePrompts(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithPromptCapabilities(true))
	RegisterOpenObservePrompts(s)
}

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	if len(result.Messages) == 0 {
		t.Fatal("prompt result has no messages")
	}
	content, ok := result.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Messages[0].Content)
	}
	return content.Text
}

func TestHandleInvestigateLogsPrompt(t *testing.T) {
	request := mcp.GetPromptRequest{}
	request.Params.Arguments = map[string]string{
		"stream": "nginx",
		"hours":  "6",
	}

	result, err := handleInvestigateLogsPrompt(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := promptText(t, result)
	if !strings.Contains(text, `"nginx"`) {
		t.Errorf("prompt should name the stream: %s", text)
	}
	if !strings.Contains(text, "hours=6") {
		t.Errorf("prompt should carry the lookback: %s", text)
	}
	if !strings.Contains(text, "search_logs") || !strings.Contains(text, "get_stream_schema") {
		t.Errorf("prompt should reference the query tools: %s", text)
	}
}

func TestHandleInvestigateLogsPromptDefaults(t *testing.T) {
	request := mcp.GetPromptRequest{}
	request.Params.Arguments = map[string]string{}

	result, err := handleInvestigateLogsPrompt(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := promptText(t, result)
	if !strings.Contains(text, `"default"`) {
		t.Errorf("expected default stream: %s", text)
	}
	if !strings.Contains(text, "hours=1") {
		t.Errorf("expected default lookback: %s", text)
	}
}

func TestHandleSummarizeLogVolumePrompt(t *testing.T) {
	request := mcp.GetPromptRequest{}
	request.Params.Arguments = map[string]string{"stream": "app_logs"}

	result, err := handleSummarizeLogVolumePrompt(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	text := promptText(t, result)
	if !strings.Contains(text, `"app_logs"`) {
		t.Errorf("prompt should name the stream: %s", text)
	}
	if !strings.Contains(text, "get_log_volume") {
		t.Errorf("prompt should reference get_log_volume: %s", text)
	}
}
