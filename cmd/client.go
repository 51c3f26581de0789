package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/mdfranz/openobserve-oss-mcp/internal/server"
	"github.com/mdfranz/openobserve-oss-mcp/internal/tools/openobserve"
)

// apiClient builds an OpenObserve client from the environment for the
// operator commands. Unlike serve, these commands are env-only.
func apiClient() (*openobserve.Client, error) {
	cfg := server.ConfigFromEnv()
	return openobserve.NewClient(cfg, &simpleLogger{})
}

// printJSON pretty-prints a decoded JSON value to stdout.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(b))
	return nil
}
