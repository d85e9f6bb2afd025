package loaders

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

const (
	// contentField is the preferred content key of a JSON element.
	contentField = "content"

	// fallbackContentField is consulted when contentField is absent or
	// empty.
	fallbackContentField = "publication_description"
)

// loadJSON parses a JSON file into documents. An array yields one
// document per element, an object one per key, and any other top level a
// single document of its string form. Object keys are iterated in sorted
// order so repeated ingestion of the same file is deterministic.
func (l *Loader) loadJSON(path string, info os.FileInfo) ([]domain.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrLoad, path, err)
	}

	var top any
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: parse json %s: %v", domain.ErrLoad, path, err)
	}

	filename := filepath.Base(path)
	newDoc := func(content, key string, extra map[string]string) domain.RawDocument {
		return domain.RawDocument{
			Content: content,
			Key:     key,
			Metadata: domain.Metadata{
				Filename:       filename,
				SourcePath:     path,
				FileType:       "json",
				FileSize:       info.Size(),
				CharacterCount: utf8.RuneCountInString(content),
				Extra:          extra,
			},
		}
	}

	var docs []domain.RawDocument
	switch v := top.(type) {
	case []any:
		docs = make([]domain.RawDocument, 0, len(v))
		for i, elem := range v {
			docs = append(docs, newDoc(
				elementContent(elem),
				fmt.Sprintf("%s#%d", filename, i),
				map[string]string{"json_index": strconv.Itoa(i)},
			))
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		docs = make([]domain.RawDocument, 0, len(keys))
		for _, k := range keys {
			docs = append(docs, newDoc(
				elementContent(v[k]),
				fmt.Sprintf("%s#%s", filename, k),
				map[string]string{"json_key": k},
			))
		}
	default:
		docs = []domain.RawDocument{newDoc(scalarString(top), filename, nil)}
	}

	l.log.Info("loaded %d documents from JSON file: %s", len(docs), filename)
	return docs, nil
}

// elementContent extracts the text of one JSON element: the content
// field when present and non-empty, else the fallback field, else the
// element's compact JSON form.
func elementContent(elem any) string {
	obj, ok := elem.(map[string]any)
	if !ok {
		return scalarString(elem)
	}
	if s, _ := obj[contentField].(string); s != "" {
		return s
	}
	if s, _ := obj[fallbackContentField].(string); s != "" {
		return s
	}
	return compactJSON(obj)
}

// scalarString renders a non-object JSON value as document content.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return compactJSON(v)
	}
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
