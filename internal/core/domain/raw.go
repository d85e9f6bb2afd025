package domain

import "fmt"

// RawDocument represents the extracted text of one loaded file, or of one
// element of a multi-document file (a JSON array or object). It is the
// loader's output and the unit the ingestion pipeline chunks and embeds.
type RawDocument struct {
	// Content is the extracted text.
	Content string

	// Key addresses the document when deriving record IDs. For most files
	// it equals the filename; JSON files that yield several documents
	// append the element tag so records from different elements of the
	// same file cannot collide.
	Key string

	// Metadata describes the originating file.
	Metadata Metadata
}

// RecordID derives the stable identifier for the chunk at the given index.
// Identical input files with identical chunking parameters always produce
// identical IDs, which is what makes re-ingestion an overwrite instead of
// a duplicate.
func (d RawDocument) RecordID(chunkIndex int) string {
	return fmt.Sprintf("%s_chunk_%d", d.Key, chunkIndex)
}
