package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

func TestClearCmd_Use(t *testing.T) {
	assert.Equal(t, "clear", clearCmd.Use)
}

func TestClearCmd_PromptDeclined(t *testing.T) {
	mock := &mockCollectionService{info: domain.CollectionInfo{Name: "documents", Count: 7}}
	setupTestServices(t, nil, nil, mock)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("n\n"))
	rootCmd.SetArgs([]string{"clear"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.False(t, mock.cleared)
	assert.Contains(t, buf.String(), "Remove all 7 records from 'documents'? [y/N]:")
	assert.Contains(t, buf.String(), "Cancelled.")
}

func TestClearCmd_PromptAccepted(t *testing.T) {
	mock := &mockCollectionService{info: domain.CollectionInfo{Name: "documents", Count: 7}}
	setupTestServices(t, nil, nil, mock)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("y\n"))
	rootCmd.SetArgs([]string{"clear"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.True(t, mock.cleared)
	assert.Contains(t, buf.String(), "Collection cleared. 7 records removed.")
}

func TestClearCmd_EmptyInputCancels(t *testing.T) {
	mock := &mockCollectionService{info: domain.CollectionInfo{Name: "documents", Count: 3}}
	setupTestServices(t, nil, nil, mock)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs([]string{"clear"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.False(t, mock.cleared)
	assert.Contains(t, buf.String(), "Cancelled.")
}

func TestClearCmd_YesSkipsPrompt(t *testing.T) {
	mock := &mockCollectionService{info: domain.CollectionInfo{Name: "documents", Count: 7}}
	setupTestServices(t, nil, nil, mock)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"clear", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
		clearYes = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.True(t, mock.cleared)
	assert.NotContains(t, buf.String(), "[y/N]")
	assert.Contains(t, buf.String(), "Collection cleared. 7 records removed.")
}

func TestClearCmd_RequiresService(t *testing.T) {
	setupTestServices(t, &mockIngestService{}, nil, nil)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"clear"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection service not configured")
}
