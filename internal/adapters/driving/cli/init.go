package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/corpora-labs/corpora-cli/internal/app"
	"github.com/corpora-labs/corpora-cli/internal/config"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file and probe the pipeline",
	Long: `Write a commented configuration file (default ~/.corpora/config.yaml),
then try to assemble the pipeline from it so missing API keys surface
now instead of on the first ingest.

An existing configuration file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := cfgPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}

		if _, err := os.Stat(path); err == nil {
			cmd.Printf("Config already exists at %s\n", path)
		} else {
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			cmd.Printf("Created config at %s\n", path)
			cmd.Println("Edit it to choose your providers, then export the API keys it names.")
		}

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, logger.Discard())
		if err != nil {
			cmd.Printf("Pipeline not ready yet: %v\n", err)
			cmd.Println("Export the API keys named in the config and rerun 'corpora init'.")
			return nil
		}
		defer a.Close() //nolint:errcheck

		info, err := a.Collection.Stats(cmd.Context())
		if err != nil {
			cmd.Printf("Pipeline not ready yet: %v\n", err)
			return nil
		}
		cmd.Printf("Pipeline ready: %s collection '%s' with %d records\n",
			cfg.VectorStore.Provider, info.Name, info.Count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
