package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcp-openobserve",
	Short: "MCP server for OpenObserve logs and SQL queries",
	Long: `mcp-openobserve is a Model Context Protocol (MCP) server that provides
read-only access to an OpenObserve instance through standardized MCP interfaces.

This allows AI assistants to run SQL searches, inspect stream schemas,
and analyze log volume from your OpenObserve organization.

The server supports access-key and email/password authentication and is
configured through ZO_* environment variables or flags. A handful of
operator commands (search, streams, ingest, ping) wrap the same API client
for ad-hoc use from a shell.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version for the root command
func SetVersion(version string) {
	rootCmd.Version = version
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newStreamsCmd())
	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newDeleteStreamCmd())
	rootCmd.AddCommand(newPingCmd())
}
