// Package splitter provides recursive character text splitting.
//
// Text is split greedily on a priority-ordered separator list; any segment
// still larger than the chunk size is subdivided with the next separator
// in the list. Adjacent segments are then merged back into chunks up to
// the chunk size, carrying a configurable amount of trailing context into
// the next chunk. Splitting is deterministic, which record identity
// depends on.
package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators is the default split priority: paragraph break, line
// break, space, and the empty string as the last resort. The empty string
// splits into single characters and therefore always makes progress.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", " ", ""}
}

// Recursive splits text on a priority-ordered separator list.
// It implements the TextSplitter port.
type Recursive struct {
	chunkSize  int
	overlap    int
	separators []string
}

var _ driven.TextSplitter = (*Recursive)(nil)

// Option configures the splitter.
type Option func(*Recursive)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Recursive) {
		s.chunkSize = size
	}
}

// WithChunkOverlap sets the overlap between chunks in characters.
func WithChunkOverlap(overlap int) Option {
	return func(s *Recursive) {
		s.overlap = overlap
	}
}

// WithSeparators sets the separator priority list.
func WithSeparators(separators []string) Option {
	return func(s *Recursive) {
		s.separators = append([]string(nil), separators...)
	}
}

// New creates a splitter. Parameters are validated here, once, so a
// misconfigured overlap fails at pipeline construction instead of on
// every call.
func New(opts ...Option) (*Recursive, error) {
	s := &Recursive{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidArgument, s.chunkSize)
	}
	if s.overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrInvalidArgument, s.overlap)
	}
	if s.overlap >= s.chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", domain.ErrInvalidArgument, s.overlap, s.chunkSize)
	}
	if len(s.separators) == 0 {
		s.separators = DefaultSeparators()
	}

	return s, nil
}

// ChunkSize returns the configured chunk size.
func (s *Recursive) ChunkSize() int { return s.chunkSize }

// ChunkOverlap returns the configured overlap.
func (s *Recursive) ChunkOverlap() int { return s.overlap }

// Split returns the ordered chunks of text. Empty or whitespace-only
// input yields no chunks.
func (s *Recursive) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.splitText(text, s.separators)
}

// splitText picks the first separator present in the text, splits on it,
// and recursively subdivides any segment still at or above the chunk size
// using the remaining separators.
func (s *Recursive) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var final []string
	var good []string
	for _, piece := range splitBySeparator(text, separator) {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.mergeSplits(good, separator)...)
			good = nil
		}
		if len(next) == 0 {
			// Nothing left to split on; an unbroken run larger than the
			// chunk size passes through whole.
			final = append(final, piece)
		} else {
			final = append(final, s.splitText(piece, next)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.mergeSplits(good, separator)...)
	}
	return final
}

// mergeSplits packs consecutive segments into chunks of at most chunkSize
// characters, then drops leading segments until at most overlap characters
// remain to seed the next chunk.
func (s *Recursive) mergeSplits(splits []string, separator string) []string {
	sepLen := utf8.RuneCountInString(separator)

	var docs []string
	var current []string
	total := 0

	for _, piece := range splits {
		pieceLen := utf8.RuneCountInString(piece)
		joinLen := 0
		if len(current) > 0 {
			joinLen = sepLen
		}
		if total+pieceLen+joinLen > s.chunkSize && len(current) > 0 {
			if doc := joinTrimmed(current, separator); doc != "" {
				docs = append(docs, doc)
			}
			for len(current) > 0 {
				if total <= s.overlap && (total+pieceLen+sepLen <= s.chunkSize || total == 0) {
					break
				}
				headLen := utf8.RuneCountInString(current[0])
				total -= headLen
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += pieceLen
		if len(current) > 1 {
			total += sepLen
		}
	}

	if doc := joinTrimmed(current, separator); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitBySeparator splits text on the separator, dropping empty segments.
// The empty separator splits into individual characters.
func splitBySeparator(text, separator string) []string {
	var parts []string
	if separator == "" {
		parts = make([]string, 0, len(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(text, separator)
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinTrimmed(parts []string, separator string) string {
	return strings.TrimSpace(strings.Join(parts, separator))
}
