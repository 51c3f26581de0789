package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newStreamsCmd creates the operator command for listing streams.
func newStreamsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "streams",
		Short: "List streams for the configured organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient()
			if err != nil {
				return err
			}

			result, err := client.ListStreams(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(result)
			}

			printStreamTable(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")

	return cmd
}

// printStreamTable renders the streams listing as a table of name, type,
// document count, and storage size in MB.
func printStreamTable(result any) {
	fmt.Printf("%-30s | %-10s | %-10s | %-10s\n", "Stream Name", "Type", "Docs", "Size (MB)")
	fmt.Println(strings.Repeat("-", 70))

	body, ok := result.(map[string]any)
	if !ok {
		return
	}
	list, ok := body["list"].([]any)
	if !ok {
		return
	}

	for _, entry := range list {
		stream, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := stringField(stream, "name")
		streamType := stringField(stream, "stream_type")

		var docNum, storageSize float64
		if stats, ok := stream["stats"].(map[string]any); ok {
			docNum, _ = stats["doc_num"].(float64)
			storageSize, _ = stats["storage_size"].(float64)
		}

		fmt.Printf("%-30s | %-10s | %-10.0f | %-10.2f\n",
			name, streamType, docNum, storageSize/(1024*1024))
	}
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return "N/A"
}
