package loaders

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

// extractPDF concatenates the per-page text of a PDF, one newline between
// pages, and trims surrounding whitespace. Any extraction failure is a
// document-level load error, never a silent skip.
func extractPDF(path string) (text string, err error) {
	// The pdf reader panics on some malformed files; a panic here is the
	// same load failure as a returned error.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: read pdf %s: %v", domain.ErrLoad, path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf %s: %v", domain.ErrLoad, path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: extract pdf page %d of %s: %v", domain.ErrLoad, i, path, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), nil
}
