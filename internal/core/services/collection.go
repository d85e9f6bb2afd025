package services

import (
	"context"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService exposes collection maintenance operations.
type CollectionService struct {
	store driven.VectorStore
	log   *logger.Logger
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store driven.VectorStore, log *logger.Logger) *CollectionService {
	if log == nil {
		log = logger.Discard()
	}
	return &CollectionService{store: store, log: log}
}

// Stats reports the collection's live state from the backend.
func (s *CollectionService) Stats(ctx context.Context) (domain.CollectionInfo, error) {
	return s.store.CollectionInfo(ctx)
}

// Clear deletes every record in the collection. The collection comes
// back on the next ingest.
func (s *CollectionService) Clear(ctx context.Context) error {
	if err := s.store.DeleteCollection(ctx); err != nil {
		return err
	}
	s.log.Info("collection cleared")
	return nil
}
