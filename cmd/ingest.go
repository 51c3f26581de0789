package cmd

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// newIngestCmd creates the operator command for ingesting JSON records.
func newIngestCmd() *cobra.Command {
	var (
		stream     string
		filePath   string
		inlineData string
		sample     int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest JSON records into a stream",
		Long: `Ingest JSON records into a stream via /api/{org}/{stream}/_json.

Records come from --file (a JSON object or array), --data (inline JSON),
or --sample N (generated synthetic log records).

Example:
  mcp-openobserve ingest --stream sample_logs --sample 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient()
			if err != nil {
				return err
			}

			records, err := loadRecords(filePath, inlineData, sample)
			if err != nil {
				return err
			}

			result, err := client.IngestJSON(cmd.Context(), stream, records)
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d records into %q\n", len(records), stream)
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&stream, "stream", "sample_logs", "Target stream name")
	cmd.Flags().StringVar(&filePath, "file", "", "Path to a JSON file (object or array)")
	cmd.Flags().StringVar(&inlineData, "data", "", "Inline JSON string (object or array)")
	cmd.Flags().IntVar(&sample, "sample", 0, "Generate N synthetic log records instead of reading input")

	return cmd
}

// loadRecords resolves the ingest payload from one of the three sources.
// A single JSON object is wrapped into a one-element array.
func loadRecords(filePath, inlineData string, sample int) ([]map[string]any, error) {
	if sample > 0 {
		return sampleRecords(sample), nil
	}

	var raw []byte
	switch {
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filePath, err)
		}
		raw = data
	case inlineData != "":
		raw = []byte(inlineData)
	default:
		return nil, fmt.Errorf("provide --file, --data, or --sample")
	}

	var asList []map[string]any
	if err := json.Unmarshal(raw, &asList); err == nil {
		return asList, nil
	}

	var asObject map[string]any
	if err := json.Unmarshal(raw, &asObject); err == nil {
		return []map[string]any{asObject}, nil
	}

	return nil, fmt.Errorf("JSON must be an object or list of objects")
}

// sampleRecords generates synthetic log records for smoke testing.
func sampleRecords(count int) []map[string]any {
	levels := []string{"INFO", "WARN", "ERROR", "DEBUG"}
	services := []string{"auth", "payment", "frontend", "backend"}

	records := make([]map[string]any, count)
	for i := range records {
		records[i] = map[string]any{
			"timestamp": time.Now().UnixMicro(),
			"level":     levels[rand.Intn(len(levels))],
			"service":   services[rand.Intn(len(services))],
			"message":   fmt.Sprintf("Sample log message %d", i+1),
			"latency":   10 + rand.Intn(490),
		}
	}
	return records
}
