package openobserve

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterOpenObservePrompts registers guided prompts that steer an agent
// toward the read-only query tools.
func RegisterOpenObservePrompts(s *mcpserver.MCPServer) {
	investigatePrompt := mcp.NewPrompt("investigate_logs",
		mcp.WithPromptDescription("Investigate recent errors in a stream using the search tools."),
		mcp.WithArgument("stream",
			mcp.ArgumentDescription("Stream to investigate (default: default)"),
		),
		mcp.WithArgument("hours",
			mcp.ArgumentDescription("Lookback window in hours (default: 1)"),
		),
	)
	s.AddPrompt(investigatePrompt, handleInvestigateLogsPrompt)

	volumePrompt := mcp.NewPrompt("summarize_log_volume",
		mcp.WithPromptDescription("Summarize ingest volume trends for a stream."),
		mcp.WithArgument("stream",
			mcp.ArgumentDescription("Stream to summarize (default: default)"),
		),
	)
	s.AddPrompt(volumePrompt, handleSummarizeLogVolumePrompt)
}

func handleInvestigateLogsPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	stream := request.Params.Arguments["stream"]
	if stream == "" {
		stream = "default"
	}
	hours := request.Params.Arguments["hours"]
	if hours == "" {
		hours = "1"
	}

	text := fmt.Sprintf(
		"Investigate recent problems in the OpenObserve stream %q over the last %s hour(s).\n\n"+
			"1. Call get_stream_schema with stream=%q to learn the available fields.\n"+
			"2. Call search_logs with query=\"error\" and hours=%s to find failing requests.\n"+
			"3. Refine with search_sql (e.g. filter by level or service columns) to isolate the cause.\n"+
			"4. Report the most frequent error messages and when they started.",
		stream, hours, stream, hours,
	)

	return mcp.NewGetPromptResult(
		"Log investigation guide",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}

func handleSummarizeLogVolumePrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	stream := request.Params.Arguments["stream"]
	if stream == "" {
		stream = "default"
	}

	text := fmt.Sprintf(
		"Summarize ingest volume for the OpenObserve stream %q.\n\n"+
			"1. Call get_log_volume with stream=%q to get a 24 hour histogram.\n"+
			"2. Identify peaks, gaps, and the overall trend.\n"+
			"3. If volume dropped to zero, check list_streams to confirm the stream still exists.",
		stream, stream,
	)

	return mcp.NewGetPromptResult(
		"Log volume summary guide",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
