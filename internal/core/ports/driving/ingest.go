package driving

import (
	"context"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

// IngestOptions configures a directory ingestion run.
type IngestOptions struct {
	// Recursive walks subdirectories instead of only the immediate files.
	Recursive bool

	// Exclude holds glob patterns; files whose path matches any pattern
	// are skipped.
	Exclude []string
}

// IngestService populates the collection from files on disk.
type IngestService interface {
	// IngestFile loads, chunks, embeds and stores a single file.
	// Errors propagate to the caller.
	IngestFile(ctx context.Context, path string) (domain.IngestStats, error)

	// IngestDirectory ingests every supported file under dir. A failing
	// file is logged and skipped; the batch continues and the stats report
	// how many files failed.
	IngestDirectory(ctx context.Context, dir string, opts IngestOptions) (domain.IngestStats, error)
}
