package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

// newSearchCmd creates the operator command for running ad-hoc SQL searches.
func newSearchCmd() *cobra.Command {
	var (
		sql         string
		size        int
		offset      int
		startMicros int64
		endMicros   int64
		hours       int64
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run an SQL query against OpenObserve",
		Long: `Run an SQL query via /api/{org}/_search and print the JSON result.

Connection settings come from the ZO_* environment variables.

Example:
  mcp-openobserve search --sql "SELECT * FROM nginx LIMIT 5" --hours 24`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient()
			if err != nil {
				return err
			}

			now := time.Now().UnixMicro()
			start := startMicros
			end := endMicros
			if hours > 0 {
				start = now - hours*int64(time.Hour/time.Microsecond)
				end = now + int64(time.Hour/time.Microsecond)
			} else {
				if start == 0 {
					start = now - 24*int64(time.Hour/time.Microsecond)
				}
				if end == 0 {
					end = now + int64(time.Hour/time.Microsecond)
				}
			}

			result, err := client.Search(cmd.Context(), sql, start, end, size, offset)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&sql, "sql", "", "SQL query text")
	cmd.Flags().IntVar(&size, "size", 1000, "Maximum number of rows to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of rows to skip")
	cmd.Flags().Int64Var(&startMicros, "start-micros", 0, "Window start as microsecond epoch (default: now - 24h)")
	cmd.Flags().Int64Var(&endMicros, "end-micros", 0, "Window end as microsecond epoch (default: now + 1h)")
	cmd.Flags().Int64Var(&hours, "hours", 0, "Lookback window in hours (overrides start/end)")
	_ = cmd.MarkFlagRequired("sql")

	return cmd
}
