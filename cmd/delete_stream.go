package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// newDeleteStreamCmd creates the operator command for deleting a stream.
// Deletion is deliberately absent from the MCP tool surface; this command
// exists for interactive cleanup only.
func newDeleteStreamCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-stream NAME",
		Short: "Delete a stream (operator use only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stream := args[0]

			if !yes {
				fmt.Printf("Are you sure you want to delete stream %q? (y/N): ", stream)
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if strings.ToLower(strings.TrimSpace(answer)) != "y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			client, err := apiClient()
			if err != nil {
				return err
			}

			result, err := client.DeleteStream(cmd.Context(), stream)
			if err != nil {
				return err
			}

			fmt.Printf("Deleted stream %q\n", stream)
			return printJSON(result)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}
