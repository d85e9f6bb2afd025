package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

func answerFixture() domain.Answer {
	return domain.Answer{
		Question: "what changed in march?",
		Response: "Revenue grew by 12% in March.",
		Retrieved: []domain.QueryMatch{
			{
				ID:    "chunk-1",
				Text:  "revenue grew by 12%",
				Score: 0.92,
				Metadata: domain.Metadata{
					Filename:   "report.txt",
					SourcePath: "/docs/report.txt",
					ChunkIndex: 1,
				},
			},
			{
				ID:    "chunk-2",
				Text:  "march summary",
				Score: 0.87,
				Metadata: domain.Metadata{
					Filename:   "summary.txt",
					SourcePath: "/docs/summary.txt",
					ChunkIndex: 0,
				},
			},
		},
		SourceCount: 2,
	}
}

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask <question>", askCmd.Use)
}

func TestAskCmd_FlagDefaults(t *testing.T) {
	topK, err := askCmd.Flags().GetInt("top-k")
	require.NoError(t, err)
	assert.Equal(t, 0, topK)

	jsonOut, err := askCmd.Flags().GetBool("json")
	require.NoError(t, err)
	assert.False(t, jsonOut)

	showSources, err := askCmd.Flags().GetBool("show-sources")
	require.NoError(t, err)
	assert.False(t, showSources)
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	mock := &mockAnswerService{answer: answerFixture()}
	setupTestServices(t, nil, mock, nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "what changed in march?", "--show-sources", "--top-k", "3"})
	defer func() {
		rootCmd.SetArgs(nil)
		askTopK = 0
		askShowSources = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "what changed in march?", mock.lastQuestion)
	assert.Equal(t, 3, mock.lastOpts.TopK)

	out := buf.String()
	assert.Contains(t, out, "Revenue grew by 12% in March.")
	assert.Contains(t, out, "Sources used: 2")
	assert.Contains(t, out, "[1] report.txt (chunk 1, score 0.920)")
	assert.Contains(t, out, "[2] summary.txt (chunk 0, score 0.870)")
}

func TestAskCmd_HidesSourcesByDefault(t *testing.T) {
	mock := &mockAnswerService{answer: answerFixture()}
	setupTestServices(t, nil, mock, nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "what changed in march?"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Sources used: 2")
	assert.NotContains(t, buf.String(), "report.txt")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	mock := &mockAnswerService{answer: answerFixture()}
	setupTestServices(t, nil, mock, nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "what changed in march?", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		askJSON = false
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	var out answerOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "what changed in march?", out.Question)
	assert.Equal(t, "Revenue grew by 12% in March.", out.Answer)
	assert.Equal(t, 2, out.SourceCount)
	require.Len(t, out.Sources, 2)
	assert.Equal(t, "report.txt", out.Sources[0].Filename)
	assert.Equal(t, "/docs/report.txt", out.Sources[0].Path)
	assert.Equal(t, 1, out.Sources[0].ChunkIndex)
}

func TestAskCmd_PropagatesError(t *testing.T) {
	mock := &mockAnswerService{err: errors.New("generation provider unavailable")}
	setupTestServices(t, nil, mock, nil)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation provider unavailable")
}

func TestAskCmd_RequiresService(t *testing.T) {
	setupTestServices(t, &mockIngestService{}, nil, nil)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer service not configured")
}
