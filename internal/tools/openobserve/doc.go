// Package openobserve provides MCP tools for querying an OpenObserve backend.
//
// This package implements the following MCP tools:
//
// Query Tools:
//   - search_sql: Run arbitrary SQL via /api/{org}/_search
//   - search_logs: Full-text search over one stream using match_all()
//   - get_log_volume: Histogram of log counts bucketed by interval
//
// Discovery Tools:
//   - list_streams: List streams for the configured organization
//   - get_stream_schema: Field schema for a single stream
//   - get_api: Generic GET restricted to `healthz` and `api/{org}/...`
//
// All tools are read-only. Responses larger than the configured character
// budget are replaced by a truncation preview object; search row counts are
// capped by the configured max-rows ceiling.
//
// Authentication Support:
//   - Access key sent as a literal `Authorization: Basic <key>` header
//     (an OpenObserve quirk: the key is not base64 user:pass)
//   - HTTP basic authentication via root user email/password
//
// The Client additionally exposes ingest and stream deletion for the
// operator CLI commands; those are deliberately not registered as tools.
package openobserve
