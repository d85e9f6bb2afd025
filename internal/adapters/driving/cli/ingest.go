package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
	"github.com/corpora-labs/corpora-cli/internal/progress"
)

var (
	ingestRecursive bool
	ingestExclude   []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Load, chunk and embed documents into the collection",
	Long: `Ingest a file or directory into the vector collection.

Each document is split into overlapping chunks, embedded and stored.
Directories are ingested file by file; a file that fails to load is
logged and skipped. Pass --recursive to walk subdirectories and
--exclude to skip files by glob pattern.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestService == nil {
			return fmt.Errorf("ingest service not configured")
		}

		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if application != nil {
			application.Ingest.SetProgressReporter(progress.New(progress.Enabled(), "ingesting"))
		}

		start := time.Now()
		var stats domain.IngestStats
		if info.IsDir() {
			stats, err = ingestService.IngestDirectory(cmd.Context(), path, driving.IngestOptions{
				Recursive: ingestRecursive,
				Exclude:   ingestExclude,
			})
		} else {
			stats, err = ingestService.IngestFile(cmd.Context(), path)
		}
		if err != nil {
			return err
		}

		cmd.Printf("Ingested %d files (%d documents, %d chunks) in %.2fs\n",
			stats.Files, stats.Documents, stats.Chunks, time.Since(start).Seconds())
		if stats.Failed > 0 {
			cmd.Printf("%d files failed; rerun with --verbose for details\n", stats.Failed)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "walk subdirectories")
	ingestCmd.Flags().StringSliceVar(&ingestExclude, "exclude", nil, "glob patterns of files to skip (repeatable)")
	rootCmd.AddCommand(ingestCmd)
}
