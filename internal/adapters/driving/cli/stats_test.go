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

func TestStatsCmd_Use(t *testing.T) {
	assert.Equal(t, "stats", statsCmd.Use)
}

func TestStatsCmd_PrintsCollectionInfo(t *testing.T) {
	mock := &mockCollectionService{info: domain.CollectionInfo{
		Name:           "documents",
		Count:          42,
		Provider:       "qdrant",
		VectorSize:     768,
		DistanceMetric: domain.MetricEuclidean,
	}}
	setupTestServices(t, nil, nil, mock)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Collection: documents")
	assert.Contains(t, out, "Provider: qdrant")
	assert.Contains(t, out, "Vectors: 768-dimensional, euclidean distance")
	assert.Contains(t, out, "Records: 42")
	assert.NotContains(t, out, "No documents found")
}

func TestStatsCmd_EmptyCollectionHint(t *testing.T) {
	mock := &mockCollectionService{info: domain.CollectionInfo{
		Name:           "documents",
		Provider:       "sqlite",
		VectorSize:     1536,
		DistanceMetric: domain.MetricCosine,
	}}
	setupTestServices(t, nil, nil, mock)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No documents found. Run 'corpora ingest <path>' to add some.")
}

func TestStatsCmd_JSONOutput(t *testing.T) {
	mock := &mockCollectionService{info: domain.CollectionInfo{
		Name:           "documents",
		Count:          42,
		Provider:       "qdrant",
		VectorSize:     768,
		DistanceMetric: domain.MetricEuclidean,
	}}
	setupTestServices(t, nil, nil, mock)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		statsJSON = false
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	var out struct {
		Name           string `json:"name"`
		Provider       string `json:"provider"`
		VectorSize     int    `json:"vector_size"`
		DistanceMetric string `json:"distance_metric"`
		Count          int64  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "documents", out.Name)
	assert.Equal(t, "qdrant", out.Provider)
	assert.Equal(t, 768, out.VectorSize)
	assert.Equal(t, "euclidean", out.DistanceMetric)
	assert.Equal(t, int64(42), out.Count)
}

func TestStatsCmd_PropagatesError(t *testing.T) {
	mock := &mockCollectionService{statsErr: errors.New("store unreachable")}
	setupTestServices(t, nil, nil, mock)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"stats"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unreachable")
}

func TestStatsCmd_RequiresService(t *testing.T) {
	setupTestServices(t, &mockIngestService{}, nil, nil)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"stats"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection service not configured")
}
