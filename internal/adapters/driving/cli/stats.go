package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	Long:  `Show the collection name, backing store and live record count.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if collectionService == nil {
			return fmt.Errorf("collection service not configured")
		}

		info, err := collectionService.Stats(cmd.Context())
		if err != nil {
			return err
		}

		if statsJSON {
			out := struct {
				Name           string `json:"name"`
				Provider       string `json:"provider"`
				VectorSize     int    `json:"vector_size"`
				DistanceMetric string `json:"distance_metric"`
				Count          int64  `json:"count"`
			}{info.Name, info.Provider, info.VectorSize, string(info.DistanceMetric), info.Count}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshalling stats: %w", err)
			}
			cmd.Println(string(data))
			return nil
		}

		cmd.Printf("Collection: %s\n", info.Name)
		cmd.Printf("Provider: %s\n", info.Provider)
		cmd.Printf("Vectors: %d-dimensional, %s distance\n", info.VectorSize, info.DistanceMetric)
		cmd.Printf("Records: %d\n", info.Count)
		if info.Count == 0 {
			cmd.Println("No documents found. Run 'corpora ingest <path>' to add some.")
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}
