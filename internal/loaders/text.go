package loaders

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

const (
	encodingUTF8   = "utf-8"
	encodingLatin1 = "latin-1"
)

// decodeResult is the declared outcome of the two-stage text decode, so
// the fallback branch is visible to callers and tests instead of being
// hidden inside error recovery.
type decodeResult struct {
	text     string
	encoding string
}

// decodeText decodes file bytes as UTF-8, falling back to a Latin-1
// byte-preserving decode when the data is not valid UTF-8. The fallback
// cannot fail: every byte maps to the code point of the same value.
func decodeText(data []byte) decodeResult {
	if utf8.Valid(data) {
		return decodeResult{text: string(data), encoding: encodingUTF8}
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return decodeResult{text: string(runes), encoding: encodingLatin1}
}

// loadText reads a plain-text file. The returned extra map records the
// encoding only when the fallback decode was taken.
func (l *Loader) loadText(path string) (string, map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return "", nil, fmt.Errorf("%w: read %s: %v", domain.ErrLoad, path, err)
	}

	decoded := decodeText(data)
	var extra map[string]string
	if decoded.encoding != encodingUTF8 {
		extra = map[string]string{"encoding": decoded.encoding}
		l.log.Debug("decoded %s as %s", path, decoded.encoding)
	}
	return decoded.text, extra, nil
}
