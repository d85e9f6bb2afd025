package cli

import (
	"github.com/spf13/cobra"

	"github.com/corpora-labs/corpora-cli/internal/loaders"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported document formats",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println("Supported formats:")
		for _, ext := range loaders.SupportedExtensions() {
			cmd.Printf("  %s\n", ext)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
