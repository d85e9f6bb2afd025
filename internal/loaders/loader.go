// Package loaders parses supported file formats into raw documents.
//
// Dispatch is strictly by file extension. A loader never partially
// succeeds on a single file: either the file's documents are returned or
// a classified error is. Directory loading is the one place failures are
// tolerated, where a broken file is logged and skipped so the rest of the
// batch survives.
package loaders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

// supportedExtensions maps lowercase extensions to the stored file type.
var supportedExtensions = map[string]string{
	".txt":  "txt",
	".pdf":  "pdf",
	".docx": "docx",
	".json": "json",
}

// SupportedExtensions lists the loadable extensions in display order.
func SupportedExtensions() []string {
	return []string{".txt", ".pdf", ".docx", ".json"}
}

// Loader parses files into raw documents.
// It implements the DocumentLoader port.
type Loader struct {
	log *logger.Logger
}

var _ driven.DocumentLoader = (*Loader)(nil)

// New creates a loader reporting through log.
func New(log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{log: log}
}

// Supports reports whether the loader handles the file's extension.
func (l *Loader) Supports(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load parses one file into one or more raw documents. JSON files may
// yield several documents; every other format yields exactly one.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrLoad, path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	fileType, ok := supportedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}

	if fileType == "json" {
		return l.loadJSON(path, info)
	}

	var content string
	var extra map[string]string
	switch fileType {
	case "txt":
		content, extra, err = l.loadText(path)
	case "pdf":
		content, err = extractPDF(path)
	case "docx":
		content, err = extractDocx(path)
	}
	if err != nil {
		return nil, err
	}

	meta := domain.Metadata{
		Filename:       filepath.Base(path),
		SourcePath:     path,
		FileType:       fileType,
		FileSize:       info.Size(),
		CharacterCount: utf8.RuneCountInString(content),
		Extra:          extra,
	}
	l.log.Info("loaded document: %s (%d characters)", meta.Filename, meta.CharacterCount)

	return []domain.RawDocument{{
		Content:  content,
		Key:      meta.Filename,
		Metadata: meta,
	}}, nil
}

// LoadDirectory parses every supported file directly inside dir. Files
// that fail to load are logged and skipped; the batch continues.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]domain.RawDocument, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, dir)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrLoad, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidArgument, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrLoad, dir, err)
	}

	var docs []domain.RawDocument
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !l.Supports(path) {
			continue
		}
		loaded, err := l.Load(ctx, path)
		if err != nil {
			l.log.Warn("skipping %s: %v", path, err)
			continue
		}
		docs = append(docs, loaded...)
	}

	l.log.Info("loaded %d documents from %s", len(docs), dir)
	return docs, nil
}
