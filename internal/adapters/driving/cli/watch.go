package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpora-labs/corpora-cli/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-ingest files in a directory as they change",
	Long: `Watch a directory and re-ingest a file whenever it is created or
written. Events are debounced so one save triggers one ingestion.
Subdirectories and hidden files are ignored. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return fmt.Errorf("watch requires a configured pipeline")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := watcher.New(application.Ingest, application.Loader, watchDebounce, appLogger)
		if err := w.Watch(ctx, args[0]); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "delay before re-ingesting a changed file")
	rootCmd.AddCommand(watchCmd)
}
