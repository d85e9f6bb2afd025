package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all records from the collection",
	Long: `Destroy the collection and every record in it. The collection is
recreated on the next ingestion. Prompts for confirmation unless --yes
is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if collectionService == nil {
			return fmt.Errorf("collection service not configured")
		}

		info, err := collectionService.Stats(cmd.Context())
		if err != nil {
			return err
		}

		if !clearYes {
			cmd.Printf("Remove all %d records from '%s'? [y/N]: ", info.Count, info.Name)
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				cmd.Println("Cancelled.")
				return nil
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
			default:
				cmd.Println("Cancelled.")
				return nil
			}
		}

		if err := collectionService.Clear(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Collection cleared. %d records removed.\n", info.Count)
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
