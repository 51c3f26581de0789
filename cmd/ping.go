package cmd

import (
	"github.com/spf13/cobra"
)

// newPingCmd creates the operator command for checking backend liveness.
func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check OpenObserve liveness via GET /healthz",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient()
			if err != nil {
				return err
			}

			result, err := client.Get(cmd.Context(), "healthz", nil)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}
