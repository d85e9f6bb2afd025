package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the load, split, embed, store pipeline.
type IngestService struct {
	loader   driven.DocumentLoader
	splitter driven.TextSplitter
	embedder driven.EmbeddingService
	store    driven.VectorStore
	progress driven.ProgressReporter
	log      *logger.Logger
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	loader driven.DocumentLoader,
	splitter driven.TextSplitter,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	log *logger.Logger,
) *IngestService {
	if log == nil {
		log = logger.Discard()
	}
	return &IngestService{
		loader:   loader,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		log:      log,
	}
}

// SetProgressReporter attaches a progress reporter for directory
// ingestion. Without one, ingestion runs silently.
func (s *IngestService) SetProgressReporter(p driven.ProgressReporter) {
	s.progress = p
}

// IngestFile loads a single file, splits it into chunks, embeds them
// and stores the records. Errors propagate to the caller.
func (s *IngestService) IngestFile(ctx context.Context, path string) (domain.IngestStats, error) {
	s.log.Info("ingesting document: %s", path)

	docs, err := s.loader.Load(ctx, path)
	if err != nil {
		return domain.IngestStats{}, err
	}

	stats := domain.IngestStats{Files: 1}
	for _, doc := range docs {
		chunks, err := s.storeDocument(ctx, doc)
		if err != nil {
			return stats, err
		}
		stats.Documents++
		stats.Chunks += chunks
	}

	s.log.Info("ingested %d chunks from %s", stats.Chunks, path)
	return stats, nil
}

// IngestDirectory ingests every supported file under dir. A file that
// fails is logged and skipped; the rest of the directory still goes
// through.
func (s *IngestService) IngestDirectory(ctx context.Context, dir string, opts driving.IngestOptions) (domain.IngestStats, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.IngestStats{}, fmt.Errorf("%w: directory %s", domain.ErrNotFound, dir)
		}
		return domain.IngestStats{}, fmt.Errorf("%w: stat %s: %v", domain.ErrLoad, dir, err)
	}
	if !info.IsDir() {
		return domain.IngestStats{}, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidArgument, dir)
	}

	files, err := s.collectFiles(dir, opts)
	if err != nil {
		return domain.IngestStats{}, err
	}
	s.log.Info("found %d supported documents in %s", len(files), dir)

	if s.progress != nil {
		s.progress.Start(len(files))
		defer s.progress.Finish()
	}

	var stats domain.IngestStats
	for _, path := range files {
		fileStats, err := s.IngestFile(ctx, path)
		if s.progress != nil {
			s.progress.Increment()
		}
		if err != nil {
			// A cancelled context aborts the whole run instead of
			// skipping every remaining file.
			if ctx.Err() != nil {
				return stats, err
			}
			s.log.Warn("skipping %s: %v", path, err)
			stats.Failed++
			continue
		}
		stats.Files += fileStats.Files
		stats.Documents += fileStats.Documents
		stats.Chunks += fileStats.Chunks
	}

	s.log.Info("ingested %d chunks from %d files (%d failed)", stats.Chunks, stats.Files, stats.Failed)
	return stats, nil
}

// storeDocument chunks one document and writes its records in a
// single batch. Record IDs derive from the document key and chunk
// index, so re-ingesting a file overwrites its previous records.
func (s *IngestService) storeDocument(ctx context.Context, doc domain.RawDocument) (int, error) {
	chunks := s.splitter.Split(doc.Content)
	if len(chunks) == 0 {
		s.log.Debug("no chunks produced for %s", doc.Key)
		return 0, nil
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, err
	}

	ids := make([]string, len(chunks))
	metadatas := make([]domain.Metadata, len(chunks))
	for i, chunk := range chunks {
		ids[i] = doc.RecordID(i)
		metadatas[i] = doc.Metadata.WithChunk(i, chunk)
	}

	if err := s.store.AddDocuments(ctx, embeddings, chunks, metadatas, ids); err != nil {
		return 0, err
	}
	s.log.Debug("stored %d chunks for %s", len(chunks), doc.Key)
	return len(chunks), nil
}

// collectFiles returns the sorted list of supported, non-excluded
// files under root.
func (s *IngestService) collectFiles(root string, opts driving.IngestOptions) ([]string, error) {
	var files []string

	if opts.Recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && excluded(root, path, opts.Exclude) {
					return fs.SkipDir
				}
				return nil
			}
			if !s.loader.Supports(path) || excluded(root, path, opts.Exclude) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: walk %s: %v", domain.ErrLoad, root, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("%w: read directory %s: %v", domain.ErrLoad, root, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(root, entry.Name())
			if !s.loader.Supports(path) || excluded(root, path, opts.Exclude) {
				continue
			}
			files = append(files, path)
		}
	}

	sort.Strings(files)
	return files, nil
}

// excluded reports whether the path matches any exclude glob, tried
// against both the slash-separated relative path and the base name.
func excluded(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)

	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
