// Package server provides the core server infrastructure for the MCP OpenObserve server.
//
// This package contains:
// - ServerContext: Configuration and shared resources management
// - Logger interface: Structured logging abstraction
// - Configuration options: Functional options pattern for server setup
//
// The ServerContext manages the lifecycle of the server and provides
// thread-safe access to configuration options such as:
// - Debug mode toggle
// - OpenObserve connection settings (ZO_BASE_URL, ZO_ORG, credentials)
// - Response size limits (MCP_MAX_ROWS, MCP_MAX_CHARS)
//
// Example usage:
//
//	ctx := context.Background()
//	serverContext, err := server.NewServerContext(ctx,
//	    server.WithDebugMode(true),
//	    server.WithLogger(logger),
//	)
package server
