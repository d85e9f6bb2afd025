// Package cli implements the corpora command line interface. Commands
// are thin adapters over the core services; assembly happens in
// internal/app when the first command that needs the pipeline runs.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corpora-labs/corpora-cli/internal/app"
	"github.com/corpora-labs/corpora-cli/internal/config"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	cfgPath string
	verbose bool
)

// Services the commands run against. Populated by initServices from the
// configuration; tests inject mocks directly.
var (
	ingestService     driving.IngestService
	answerService     driving.AnswerService
	collectionService driving.CollectionService

	// application owns the adapter resources behind the services. Nil
	// when services were injected from outside.
	application *app.App
	appLogger   *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "corpora",
	Short: "Ingest documents and ask questions grounded on them",
	Long: `corpora chunks and embeds local documents into a vector collection,
then answers questions grounded on the most relevant chunks.

Supported stores are sqlite (embedded), Qdrant and Weaviate. Questions
can be asked from the command line or by AI assistants over MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the configuration file (default ~/.corpora/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable diagnostic output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// standaloneCommands run without a configured pipeline.
var standaloneCommands = map[string]bool{
	"init":             true,
	"version":          true,
	"formats":          true,
	"help":             true,
	"completion":       true,
	"__complete":       true,
	"__completeNoDesc": true,
}

func isStandalone(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if standaloneCommands[c.Name()] {
			return true
		}
	}
	return false
}

// initServices assembles the pipeline for commands that need one.
// Injected services are left alone so tests can run commands without a
// configuration file.
func initServices(cmd *cobra.Command, _ []string) error {
	if isStandalone(cmd) {
		return nil
	}
	if ingestService != nil || answerService != nil || collectionService != nil {
		return nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return fmt.Errorf("%v\nrun 'corpora init' to create one", err)
		}
		return err
	}
	if verbose {
		cfg.Logging.Verbose = true
	}

	appLogger = logger.New(os.Stderr, cfg.Logging.Verbose)
	application, err = app.New(cmd.Context(), cfg, appLogger)
	if err != nil {
		return err
	}

	ingestService = application.Ingest
	answerService = application.Answer
	collectionService = application.Collection
	return nil
}

func closeServices() error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	ingestService = nil
	answerService = nil
	collectionService = nil
	return err
}
