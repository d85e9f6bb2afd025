package driven

// TextSplitter splits raw text into retrievable fragments.
//
// Splitting must be deterministic: identical input always yields the
// identical chunk sequence, which record identity depends on.
type TextSplitter interface {
	// Split returns the ordered chunks of text. Empty or whitespace-only
	// input yields no chunks.
	Split(text string) []string
}
