package driving

import (
	"context"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

// CollectionService manages the stored collection as a whole.
type CollectionService interface {
	// Stats reports the collection's identity and live record count.
	Stats(ctx context.Context) (domain.CollectionInfo, error)

	// Clear destroys the collection. The backing store recreates it
	// lazily on the next write, so ingestion keeps working afterwards.
	Clear(ctx context.Context) error
}
