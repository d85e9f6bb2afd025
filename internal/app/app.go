// Package app assembles the configured adapters into ready-to-use
// services. It is the single place that knows which provider maps to
// which adapter.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	ollamaembed "github.com/corpora-labs/corpora-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/corpora-labs/corpora-cli/internal/adapters/driven/embedding/openai"
	"github.com/corpora-labs/corpora-cli/internal/adapters/driven/generation/anthropic"
	ollamagen "github.com/corpora-labs/corpora-cli/internal/adapters/driven/generation/ollama"
	openaigen "github.com/corpora-labs/corpora-cli/internal/adapters/driven/generation/openai"
	"github.com/corpora-labs/corpora-cli/internal/adapters/driven/vectorstore/qdrant"
	"github.com/corpora-labs/corpora-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/corpora-labs/corpora-cli/internal/adapters/driven/vectorstore/weaviate"
	"github.com/corpora-labs/corpora-cli/internal/config"
	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-cli/internal/core/services"
	"github.com/corpora-labs/corpora-cli/internal/loaders"
	"github.com/corpora-labs/corpora-cli/internal/logger"
	"github.com/corpora-labs/corpora-cli/internal/splitter"
)

// App bundles the assembled services and owns the resources behind
// them. Close releases everything in reverse construction order.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	Loader *loaders.Loader

	Ingest     *services.IngestService
	Answer     *services.AnswerService
	Collection *services.CollectionService

	closers []io.Closer
}

// New builds the full pipeline from a validated configuration. The
// context bounds backend handshakes made during construction.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Discard()
	}
	a := &App{Config: cfg, Log: log}

	split, err := splitter.New(
		splitter.WithChunkSize(cfg.TextSplitter.ChunkSize),
		splitter.WithChunkOverlap(cfg.TextSplitter.ChunkOverlap),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	a.trackCloser(embedder)

	store, err := buildStore(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.trackCloser(store)

	generator, err := buildGenerator(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if generator != nil {
		a.trackCloser(generator)
	}

	a.Loader = loaders.New(log)
	a.Ingest = services.NewIngestService(a.Loader, split, embedder, store, log)
	a.Answer = services.NewAnswerService(embedder, store, generator, cfg.Retrieval.TopK, log)
	a.Collection = services.NewCollectionService(store, log)
	return a, nil
}

// Close releases adapter resources. It is safe to call on a partially
// constructed App.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) trackCloser(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
}

func buildEmbedder(cfg *config.Config) (driven.EmbeddingService, error) {
	timeout := time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second
	switch cfg.Embedding.Provider {
	case "openai":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            config.APIKey(cfg.Embedding.APIKeyEnv),
			BaseURL:           cfg.Embedding.BaseURL,
			Model:             cfg.Embedding.Model,
			Timeout:           timeout,
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
	case "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Timeout:    timeout,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, cfg.Embedding.Provider)
	}
}

func buildStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (driven.VectorStore, error) {
	metric, err := domain.ParseDistanceMetric(cfg.VectorStore.DistanceMetric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	switch cfg.VectorStore.Provider {
	case "sqlite":
		return sqlite.New(sqlite.Config{
			Path:       cfg.VectorStore.Path,
			Collection: cfg.VectorStore.CollectionName,
			VectorSize: cfg.VectorStore.VectorSize,
			Metric:     metric,
		}, log)
	case "qdrant":
		return qdrant.New(ctx, qdrant.Config{
			URL:        cfg.VectorStore.URL,
			APIKey:     config.APIKey(cfg.VectorStore.APIKeyEnv),
			Collection: cfg.VectorStore.CollectionName,
			VectorSize: cfg.VectorStore.VectorSize,
			Metric:     metric,
		}, log)
	case "weaviate":
		return weaviate.New(ctx, weaviate.Config{
			URL:        cfg.VectorStore.URL,
			APIKey:     config.APIKey(cfg.VectorStore.APIKeyEnv),
			Class:      cfg.VectorStore.ClassName,
			VectorSize: cfg.VectorStore.VectorSize,
			Metric:     metric,
		}, log)
	default:
		return nil, fmt.Errorf("%w: unknown vector store provider %q", domain.ErrConfiguration, cfg.VectorStore.Provider)
	}
}

// buildGenerator returns nil when no generation provider is configured.
// Retrieval works without one; only answer generation needs it.
func buildGenerator(cfg *config.Config) (driven.GenerationService, error) {
	timeout := time.Duration(cfg.Generation.TimeoutSeconds) * time.Second
	switch cfg.Generation.Provider {
	case "":
		return nil, nil
	case "openai":
		return openaigen.NewGenerationService(openaigen.Config{
			APIKey:      config.APIKey(cfg.Generation.APIKeyEnv),
			BaseURL:     cfg.Generation.BaseURL,
			Model:       cfg.Generation.Model,
			Timeout:     timeout,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
		})
	case "anthropic":
		return anthropic.NewGenerationService(anthropic.Config{
			APIKey:      config.APIKey(cfg.Generation.APIKeyEnv),
			BaseURL:     cfg.Generation.BaseURL,
			Model:       cfg.Generation.Model,
			Timeout:     timeout,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
		})
	case "ollama":
		return ollamagen.NewGenerationService(ollamagen.Config{
			BaseURL:     cfg.Generation.BaseURL,
			Model:       cfg.Generation.Model,
			Timeout:     timeout,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown generation provider %q", domain.ErrConfiguration, cfg.Generation.Provider)
	}
}
