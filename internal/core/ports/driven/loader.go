package driven

import (
	"context"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

// DocumentLoader parses files into raw documents.
//
// Dispatch is strictly by file extension over a fixed supported set
// (.txt, .pdf, .docx, .json). A single file may yield several documents:
// a JSON array produces one per element, a JSON object one per key.
type DocumentLoader interface {
	// Load parses one file. A missing path fails with domain.ErrNotFound,
	// an extension outside the supported set with
	// domain.ErrUnsupportedFormat, and an extraction failure with
	// domain.ErrLoad.
	Load(ctx context.Context, path string) ([]domain.RawDocument, error)

	// LoadDirectory parses every supported file directly inside dir
	// (non-recursive). Files that fail to load are logged and skipped;
	// the returned slice flattens all successfully loaded documents.
	LoadDirectory(ctx context.Context, dir string) ([]domain.RawDocument, error)

	// Supports reports whether the loader handles the file's extension.
	Supports(path string) bool
}
