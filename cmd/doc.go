// Package cmd provides the command-line interface for the MCP OpenObserve server.
//
// This package implements the Cobra CLI framework to provide commands for:
// - Starting the MCP server with various transport options (stdio, sse, http)
// - Operator conveniences (search, streams, ingest, delete-stream, ping)
// - Managing server configuration and lifecycle
//
// The main entry point is the serve command which starts the MCP server and
// registers all OpenObserve-related tools for running SQL searches,
// discovering streams, and inspecting schemas.
//
// Environment Variables:
//   - ZO_BASE_URL: OpenObserve base URL (default http://127.0.0.1:5080)
//   - ZO_ORG: Organization name (default "default")
//   - ZO_ACCESS_KEY: Access key credential (takes priority)
//   - ZO_ROOT_USER_EMAIL / ZO_ROOT_USER_PASSWORD: Basic auth credentials
//   - ZO_TIMEOUT: Request timeout in seconds (default 30)
//   - MCP_MAX_ROWS / MCP_MAX_CHARS: Response size limits
//   - OPENOBSERVE_MCP_AUTH_TOKEN: Bearer token gate for network transports
//
// Example usage:
//
//	mcp-openobserve serve --transport stdio
//	mcp-openobserve serve --transport streamable-http --http-addr :8001
//	mcp-openobserve search --sql "SELECT * FROM nginx LIMIT 5" --hours 24
package cmd
