// Package watcher re-ingests files in a directory as they change on
// disk.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last event
// before re-ingesting. Editors often emit several writes per save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher turns filesystem events into ingestion runs.
type Watcher struct {
	ingest   driving.IngestService
	loader   driven.DocumentLoader
	debounce time.Duration
	log      *logger.Logger
}

// New creates a watcher. The loader decides which files are worth
// re-ingesting. A zero debounce selects DefaultDebounce.
func New(ingest driving.IngestService, loader driven.DocumentLoader, debounce time.Duration, log *logger.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Watcher{
		ingest:   ingest,
		loader:   loader,
		debounce: debounce,
		log:      log,
	}
}

// Watch blocks processing events for dir until the context is
// cancelled. Only the directory itself is watched, not its
// subdirectories.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, dir)
		}
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidArgument, dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Info("watching %s", dir)

	pending := make(map[string]struct{})
	var due <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if path := w.eventPath(event); path != "" {
				pending[path] = struct{}{}
				due = time.After(w.debounce)
			}

		case <-due:
			due = nil
			w.flush(ctx, pending)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// eventPath returns the file to re-ingest for an event, or empty when
// the event is not actionable. Removals are not actionable: the
// records of a deleted file stay in the collection until it is
// re-ingested or cleared.
func (w *Watcher) eventPath(event fsnotify.Event) string {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return ""
	}
	if hidden(event.Name) {
		return ""
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return ""
	}
	if !w.loader.Supports(event.Name) {
		return ""
	}
	return event.Name
}

// flush ingests the pending files in stable order and clears the set.
// A failing file is logged and does not stop the rest.
func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		delete(pending, path)
		stats, err := w.ingest.IngestFile(ctx, path)
		if err != nil {
			w.log.Warn("re-ingest %s: %v", path, err)
			continue
		}
		w.log.Info("re-ingested %s (%d chunks)", path, stats.Chunks)
	}
}

func hidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
