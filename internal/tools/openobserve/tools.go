package openobserve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mdfranz/openobserve-oss-mcp/internal/server"
)

// RegisterOpenObserveTools registers the OpenObserve query tools with the
// MCP server. All registered tools are read-only.
func RegisterOpenObserveTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	client, err := NewClient(sc.OpenObserveConfig(), sc.Logger())
	if err != nil {
		return fmt.Errorf("failed to create OpenObserve client: %w", err)
	}

	searchSQLTool := mcp.NewTool("search_sql",
		mcp.WithDescription("Run an OpenObserve SQL query via /api/{org}/_search."),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL query text (e.g. \"SELECT * FROM nginx LIMIT 5\")"),
		),
		mcp.WithNumber("hours",
			mcp.Description("Lookback window in hours. Overrides start_micros/end_micros."),
		),
		mcp.WithNumber("start_micros",
			mcp.Description("Window start as microsecond epoch (default: now - 24h)"),
		),
		mcp.WithNumber("end_micros",
			mcp.Description("Window end as microsecond epoch (default: now + 1h)"),
		),
		mcp.WithNumber("size",
			mcp.DefaultNumber(100),
			mcp.Description("Maximum number of rows to return"),
		),
		mcp.WithNumber("offset",
			mcp.DefaultNumber(0),
			mcp.Description("Number of rows to skip for pagination"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	s.AddTool(searchSQLTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearchSQL(ctx, request, client, sc)
	})

	searchLogsTool := mcp.NewTool("search_logs",
		mcp.WithDescription("Full-text search over a stream using match_all()."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for; single quotes are escaped automatically"),
		),
		mcp.WithString("stream",
			mcp.DefaultString("default"),
			mcp.Description("Stream to search"),
		),
		mcp.WithNumber("hours",
			mcp.DefaultNumber(1),
			mcp.Description("Lookback window in hours"),
		),
		mcp.WithNumber("size",
			mcp.DefaultNumber(100),
			mcp.Description("Maximum number of rows to return"),
		),
		mcp.WithNumber("offset",
			mcp.DefaultNumber(0),
			mcp.Description("Number of rows to skip for pagination"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	s.AddTool(searchLogsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearchLogs(ctx, request, client, sc)
	})

	getLogVolumeTool := mcp.NewTool("get_log_volume",
		mcp.WithDescription("Log volume histogram for a stream, bucketed by interval."),
		mcp.WithString("stream",
			mcp.DefaultString("default"),
			mcp.Description("Stream to aggregate"),
		),
		mcp.WithNumber("hours",
			mcp.DefaultNumber(24),
			mcp.Description("Lookback window in hours"),
		),
		mcp.WithString("interval",
			mcp.DefaultString("1 hour"),
			mcp.Description("Histogram bucket interval (e.g. '1 hour', '5 minutes')"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	s.AddTool(getLogVolumeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetLogVolume(ctx, request, client, sc)
	})

	getStreamSchemaTool := mcp.NewTool("get_stream_schema",
		mcp.WithDescription("Get the field schema of a stream."),
		mcp.WithString("stream",
			mcp.Required(),
			mcp.Description("Stream name"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	s.AddTool(getStreamSchemaTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetStreamSchema(ctx, request, client, sc)
	})

	listStreamsTool := mcp.NewTool("list_streams",
		mcp.WithDescription("List streams for the configured OpenObserve org."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	s.AddTool(listStreamsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListStreams(ctx, request, client, sc)
	})

	getAPITool := mcp.NewTool("get_api",
		mcp.WithDescription("GET a limited OpenObserve API path. Allowed paths: `healthz`, `api/{org}/...`."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Relative API path (e.g. 'api/default/streams' or 'healthz')"),
		),
		mcp.WithArray("params",
			mcp.Description("Query parameters as key=value strings"),
			mcp.WithStringItems(),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	s.AddTool(getAPITool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetAPI(ctx, request, client, sc)
	})

	return nil
}

// resolveSearchWindow extracts hours/start_micros/end_micros from the tool
// arguments and resolves them to a concrete window. defaultHours < 0 means
// "no implicit lookback" (search_sql); >= 1 supplies the tool's default.
func resolveSearchWindow(args map[string]any, defaultHours int64) (int64, int64, error) {
	hours, hasHours, err := getOptionalIntParam(args, "hours")
	if err != nil {
		return 0, 0, err
	}
	if !hasHours && defaultHours > 0 {
		hours, hasHours = defaultHours, true
	}

	start, hasStart, err := getOptionalIntParam(args, "start_micros")
	if err != nil {
		return 0, 0, err
	}
	end, hasEnd, err := getOptionalIntParam(args, "end_micros")
	if err != nil {
		return 0, 0, err
	}

	return resolveTimeWindow(time.Now(), hours, hasHours, start, hasStart, end, hasEnd)
}

// runSearch applies the shared size/offset clamps, executes the search, and
// truncates the result to the configured character budget.
func runSearch(ctx context.Context, client *Client, sc *server.ServerContext, sql string, start, end int64, size, offset int) (*mcp.CallToolResult, error) {
	cfg := sc.OpenObserveConfig()

	result, err := client.Search(ctx, sql, start, end, size, offset)
	if err != nil {
		sc.Logger().Error("search failed", "error", err)
		return toolError(err.Error()), nil
	}

	return toolSuccess(applyMaxChars(result, cfg.MaxChars)), nil
}

// handleSearchSQL handles the search_sql tool
func handleSearchSQL(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	sql := getStringParam(args, "sql", "")
	if strings.TrimSpace(sql) == "" {
		return toolError("SQL query cannot be empty"), nil
	}

	start, end, err := resolveSearchWindow(args, 0)
	if err != nil {
		return toolError(err.Error()), nil
	}

	size, err := getIntParam(args, "size", 100)
	if err != nil {
		return toolError(err.Error()), nil
	}
	offset, err := getIntParam(args, "offset", 0)
	if err != nil {
		return toolError(err.Error()), nil
	}

	cfg := sc.OpenObserveConfig()
	effectiveSize := clampSize(size, cfg.MaxRows)
	effectiveOffset := clampOffset(offset)

	sc.Logger().Info("search_sql executing",
		"org", cfg.Org, "start", start, "end", end, "size", effectiveSize, "offset", effectiveOffset)
	sc.Logger().Debug("search_sql query", "sql", sql)

	return runSearch(ctx, client, sc, sql, start, end, effectiveSize, effectiveOffset)
}

// handleSearchLogs handles the search_logs tool
func handleSearchLogs(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query := getStringParam(args, "query", "")
	if strings.TrimSpace(query) == "" {
		return toolError("query cannot be empty"), nil
	}
	stream := getStringParam(args, "stream", "default")

	start, end, err := resolveSearchWindow(args, 1)
	if err != nil {
		return toolError(err.Error()), nil
	}

	size, err := getIntParam(args, "size", 100)
	if err != nil {
		return toolError(err.Error()), nil
	}
	offset, err := getIntParam(args, "offset", 0)
	if err != nil {
		return toolError(err.Error()), nil
	}

	// Only the query literal is escaped; the stream name is interpolated
	// verbatim and must be validated by the backend.
	sql := fmt.Sprintf("SELECT * FROM %s WHERE match_all('%s')", stream, escapeSQLLiteral(query))

	cfg := sc.OpenObserveConfig()
	effectiveSize := clampSize(size, cfg.MaxRows)
	effectiveOffset := clampOffset(offset)

	sc.Logger().Info("search_logs executing", "org", cfg.Org, "stream", stream, "size", effectiveSize)
	sc.Logger().Debug("search_logs query", "sql", sql)

	return runSearch(ctx, client, sc, sql, start, end, effectiveSize, effectiveOffset)
}

// logVolumeSize is the fixed row cap for histogram queries. It bounds bucket
// count, not hit count, so the max_rows ceiling does not apply.
const logVolumeSize = 1000

// handleGetLogVolume handles the get_log_volume tool
func handleGetLogVolume(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	stream := getStringParam(args, "stream", "default")
	interval := getStringParam(args, "interval", "1 hour")

	start, end, err := resolveSearchWindow(args, 24)
	if err != nil {
		return toolError(err.Error()), nil
	}

	sql := fmt.Sprintf(
		"SELECT histogram(_timestamp, '%s') AS key, COUNT(*) AS num FROM %s GROUP BY key ORDER BY key",
		escapeSQLLiteral(interval), stream,
	)

	sc.Logger().Info("get_log_volume executing", "stream", stream, "interval", interval)
	sc.Logger().Debug("get_log_volume query", "sql", sql)

	return runSearch(ctx, client, sc, sql, start, end, logVolumeSize, 0)
}

// handleGetStreamSchema handles the get_stream_schema tool
func handleGetStreamSchema(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	stream := getStringParam(args, "stream", "")
	if strings.TrimSpace(stream) == "" {
		return toolError("stream name cannot be empty"), nil
	}

	sc.Logger().Info("get_stream_schema executing", "stream", stream)

	result, err := client.GetStreamSchema(ctx, stream)
	if err != nil {
		sc.Logger().Error("get_stream_schema failed", "error", err, "stream", stream)
		return toolError(err.Error()), nil
	}

	return toolSuccess(applyMaxChars(result, sc.OpenObserveConfig().MaxChars)), nil
}

// handleListStreams handles the list_streams tool
func handleListStreams(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	sc.Logger().Info("list_streams executing", "org", client.Org())

	result, err := client.ListStreams(ctx)
	if err != nil {
		sc.Logger().Error("list_streams failed", "error", err)
		return toolError(err.Error()), nil
	}

	return toolSuccess(applyMaxChars(result, sc.OpenObserveConfig().MaxChars)), nil
}

// handleGetAPI handles the get_api tool
func handleGetAPI(ctx context.Context, request mcp.CallToolRequest, client *Client, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	path := getStringParam(args, "path", "")
	if path == "" {
		return toolError("path is required"), nil
	}

	cleaned, err := normalizeAPIPath(path)
	if err != nil {
		sc.Logger().Error("get_api rejected path", "path", path, "error", err)
		return toolError(err.Error()), nil
	}

	allowedPrefix := fmt.Sprintf("api/%s/", client.Org())
	if cleaned != "healthz" && !strings.HasPrefix(cleaned, allowedPrefix) {
		msg := fmt.Sprintf("path must be 'healthz' or start with '%s', got '%s'", allowedPrefix, cleaned)
		sc.Logger().Error("get_api rejected path", "path", cleaned)
		return toolError(msg), nil
	}

	pairs, err := getStringSliceParam(args, "params")
	if err != nil {
		return toolError(err.Error()), nil
	}
	params, err := parseKVPairs(pairs)
	if err != nil {
		sc.Logger().Error("get_api invalid parameters", "error", err)
		return toolError(err.Error()), nil
	}

	sc.Logger().Info("get_api executing", "path", cleaned, "params", params.Encode())

	result, err := client.Get(ctx, cleaned, params)
	if err != nil {
		sc.Logger().Error("get_api failed", "error", err, "path", cleaned)
		return toolError(err.Error()), nil
	}

	return toolSuccess(applyMaxChars(result, sc.OpenObserveConfig().MaxChars)), nil
}
