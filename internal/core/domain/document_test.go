package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetadata_WithChunk tests chunk extension of document metadata
func TestMetadata_WithChunk(t *testing.T) {
	meta := Metadata{
		Filename:       "report.txt",
		SourcePath:     "/docs/report.txt",
		FileType:       "txt",
		FileSize:       1024,
		CharacterCount: 900,
		Extra:          map[string]string{"json_key": "intro"},
	}

	chunked := meta.WithChunk(3, "chunk body")

	assert.Equal(t, 3, chunked.ChunkIndex)
	assert.Equal(t, "chunk body", chunked.Preview)
	assert.Equal(t, "report.txt", chunked.Filename)
	assert.Equal(t, "/docs/report.txt", chunked.SourcePath)

	// The parent must not observe chunk-level mutation.
	assert.Equal(t, 0, meta.ChunkIndex)
	assert.Empty(t, meta.Preview)
}

// TestMetadata_WithChunkClonesExtra tests that the extension map is copied
func TestMetadata_WithChunkClonesExtra(t *testing.T) {
	meta := Metadata{Filename: "a.json", Extra: map[string]string{"json_index": "0"}}

	chunked := meta.WithChunk(0, "text")
	require.NotNil(t, chunked.Extra)
	chunked.Extra["json_index"] = "9"

	assert.Equal(t, "0", meta.Extra["json_index"])
}

// TestPreview tests preview truncation
func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short text untouched", "hello", "hello"},
		{"exact length untouched", strings.Repeat("a", PreviewLength), strings.Repeat("a", PreviewLength)},
		{"long text truncated", strings.Repeat("b", PreviewLength+50), strings.Repeat("b", PreviewLength) + "..."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.in))
		})
	}
}

// TestPreview_MultibyteSafe tests that truncation never splits a rune
func TestPreview_MultibyteSafe(t *testing.T) {
	in := strings.Repeat("é", PreviewLength+10)
	got := Preview(in)
	assert.Equal(t, strings.Repeat("é", PreviewLength)+"...", got)
	assert.True(t, strings.HasSuffix(got, "..."))
}
