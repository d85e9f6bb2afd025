package domain

// PreviewLength is the number of characters kept when truncating chunk
// text into the stored preview.
const PreviewLength = 200

// Metadata describes a document with a fixed set of required fields plus
// an open extension map for origin-specific keys. Vector store adapters
// translate it into their native payload or property schema and back.
type Metadata struct {
	// Filename is the base name of the originating file.
	Filename string

	// SourcePath is the path the file was loaded from.
	SourcePath string

	// FileType is the extension without the dot (txt, pdf, docx, json).
	FileType string

	// FileSize is the file size in bytes.
	FileSize int64

	// CharacterCount is the length of the extracted content in characters.
	CharacterCount int

	// ChunkIndex is the 0-based position of the chunk within its parent
	// document. Zero until the metadata is extended for a chunk.
	ChunkIndex int

	// Preview is the truncated chunk text stored alongside the record.
	Preview string

	// Extra holds origin-specific keys, such as the array index or object
	// key of a JSON element.
	Extra map[string]string
}

// WithChunk returns a copy of the metadata extended with the chunk index
// and a truncated preview of the chunk text. The extension map is cloned
// so chunks never share mutable state with their parent document.
func (m Metadata) WithChunk(index int, text string) Metadata {
	out := m
	out.ChunkIndex = index
	out.Preview = Preview(text)
	if m.Extra != nil {
		out.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Preview truncates text to PreviewLength characters, appending an
// ellipsis when anything was cut off.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + "..."
}
