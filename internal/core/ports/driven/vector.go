package driven

import (
	"context"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

// VectorStore is the capability interface every similarity-search backend
// implements. The same ingestion and retrieval code runs unmodified against
// any implementation; backends differ only behind this boundary.
//
// Implementations are sealed variants selected by a configuration tag at
// construction time:
//   - sqlite: embedded store, brute-force scan
//   - qdrant: networked, REST API
//   - weaviate: networked, REST + GraphQL
//
// All implementations surface failures through the domain error taxonomy
// (ErrConnection, ErrNotFound, ErrDimensionMismatch, ErrInvalidArgument,
// ErrBackend) and never leak backend-native error types.
type VectorStore interface {
	// AddDocuments upserts one record per id. The four slices are parallel
	// and must have equal length, else ErrInvalidArgument. Every embedding
	// must match the collection's dimensionality, else ErrDimensionMismatch
	// with no partial write. Re-adding an existing id overwrites in place.
	AddDocuments(ctx context.Context, embeddings [][]float32, texts []string, metadatas []domain.Metadata, ids []string) error

	// Query returns at most topK records ordered from most to least
	// relevant under the collection's metric, with the score convention
	// declared on the result.
	Query(ctx context.Context, embedding []float32, topK int) (domain.QueryResult, error)

	// CollectionInfo reports the collection's identity and a live
	// server-side record count, never a cached figure.
	CollectionInfo(ctx context.Context) (domain.CollectionInfo, error)

	// DeleteCollection destroys the backend-side collection. Every
	// implementation recreates the collection lazily on next use, so
	// callers never special-case an absent collection.
	DeleteCollection(ctx context.Context) error
}
