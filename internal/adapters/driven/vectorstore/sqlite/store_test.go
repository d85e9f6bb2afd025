package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

// setupStore creates a store backed by a temporary database file.
func setupStore(t *testing.T, metric domain.DistanceMetric) *Store {
	t.Helper()

	store, err := New(Config{
		Path:       filepath.Join(t.TempDir(), "vectors.db"),
		Collection: "test_documents",
		VectorSize: 3,
		Metric:     metric,
	}, logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func testMetadata(filename string, chunk int) domain.Metadata {
	return domain.Metadata{
		Filename:       filename,
		SourcePath:     "/docs/" + filename,
		FileType:       "txt",
		FileSize:       42,
		CharacterCount: 24,
		ChunkIndex:     chunk,
		Preview:        "preview of " + filename,
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "missing path",
			cfg:  Config{VectorSize: 3},
		},
		{
			name: "zero vector size",
			cfg:  Config{Path: "vectors.db"},
		},
		{
			name: "negative vector size",
			cfg:  Config{Path: "vectors.db", VectorSize: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestNew_CreatesNestedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "vectors.db")

	store, err := New(Config{Path: path, VectorSize: 3}, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, path)
}

func TestNew_Defaults(t *testing.T) {
	store, err := New(Config{
		Path:       filepath.Join(t.TempDir(), "vectors.db"),
		VectorSize: 3,
	}, nil)
	require.NoError(t, err)
	defer store.Close()

	info, err := store.CollectionInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "documents", info.Name)
	assert.Equal(t, domain.MetricCosine, info.DistanceMetric)
}

func TestAddDocuments_UpsertByID(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)
	ctx := context.Background()

	err := store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}, {0, 1, 0}},
		[]string{"first text", "second text"},
		[]domain.Metadata{testMetadata("a.txt", 0), testMetadata("b.txt", 0)},
		[]string{"a.txt_chunk_0", "b.txt_chunk_0"})
	require.NoError(t, err)

	info, err := store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Count)

	// Re-adding an existing id replaces the record instead of
	// duplicating it.
	err = store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}},
		[]string{"first text revised"},
		[]domain.Metadata{testMetadata("a.txt", 0)},
		[]string{"a.txt_chunk_0"})
	require.NoError(t, err)

	info, err = store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Count)

	result, err := store.Query(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "a.txt_chunk_0", result.Matches[0].ID)
	assert.Equal(t, "first text revised", result.Matches[0].Text)
}

func TestAddDocuments_MismatchedLengths(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)
	ctx := context.Background()

	err := store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}, {0, 1, 0}},
		[]string{"only one text"},
		[]domain.Metadata{testMetadata("a.txt", 0)},
		[]string{"a.txt_chunk_0"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	info, err := store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Count)
}

func TestAddDocuments_DimensionMismatch(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)
	ctx := context.Background()

	err := store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}},
		[]string{"good"},
		[]domain.Metadata{testMetadata("a.txt", 0)},
		[]string{"a.txt_chunk_0"})
	require.NoError(t, err)

	// A batch containing a wrong-size vector is rejected before any
	// write, leaving the earlier record untouched.
	err = store.AddDocuments(ctx,
		[][]float32{{0, 1, 0}, {1, 2}},
		[]string{"ok", "short vector"},
		[]domain.Metadata{testMetadata("b.txt", 0), testMetadata("b.txt", 1)},
		[]string{"b.txt_chunk_0", "b.txt_chunk_1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	info, err := store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Count)
}

func TestAddDocuments_EmptyBatch(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)

	err := store.AddDocuments(context.Background(), nil, nil, nil, nil)
	assert.NoError(t, err)
}

func TestQuery_MostRelevantFirst(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)
	ctx := context.Background()

	err := store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0.9, 0.1, 0}},
		[]string{"exact match", "orthogonal", "close match"},
		[]domain.Metadata{testMetadata("a.txt", 0), testMetadata("b.txt", 0), testMetadata("c.txt", 0)},
		[]string{"a.txt_chunk_0", "b.txt_chunk_0", "c.txt_chunk_0"})
	require.NoError(t, err)

	result, err := store.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)

	assert.Equal(t, domain.ScoreSimilarity, result.ScoreKind)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "a.txt_chunk_0", result.Matches[0].ID)
	assert.Equal(t, "c.txt_chunk_0", result.Matches[1].ID)
	assert.InDelta(t, 1.0, result.Matches[0].Score, 1e-6)
	assert.Greater(t, result.Matches[0].Score, result.Matches[1].Score)
}

func TestQuery_EuclideanOrdersByDistance(t *testing.T) {
	store := setupStore(t, domain.MetricEuclidean)
	ctx := context.Background()

	err := store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}, {5, 5, 5}, {1.1, 0, 0}},
		[]string{"nearest", "far away", "near"},
		[]domain.Metadata{testMetadata("a.txt", 0), testMetadata("b.txt", 0), testMetadata("c.txt", 0)},
		[]string{"a.txt_chunk_0", "b.txt_chunk_0", "c.txt_chunk_0"})
	require.NoError(t, err)

	result, err := store.Query(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)

	assert.Equal(t, domain.ScoreDistance, result.ScoreKind)
	require.Len(t, result.Matches, 3)
	assert.Equal(t, "a.txt_chunk_0", result.Matches[0].ID)
	assert.Equal(t, "c.txt_chunk_0", result.Matches[1].ID)
	assert.Equal(t, "b.txt_chunk_0", result.Matches[2].ID)
	assert.InDelta(t, 0.0, result.Matches[0].Score, 1e-6)
	assert.Less(t, result.Matches[0].Score, result.Matches[1].Score)
}

func TestQuery_DotProductOrdersBySimilarity(t *testing.T) {
	store := setupStore(t, domain.MetricDot)
	ctx := context.Background()

	err := store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}, {3, 0, 0}},
		[]string{"small", "large"},
		[]domain.Metadata{testMetadata("a.txt", 0), testMetadata("b.txt", 0)},
		[]string{"a.txt_chunk_0", "b.txt_chunk_0"})
	require.NoError(t, err)

	result, err := store.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)

	assert.Equal(t, domain.ScoreSimilarity, result.ScoreKind)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "b.txt_chunk_0", result.Matches[0].ID)
	assert.InDelta(t, 3.0, result.Matches[0].Score, 1e-6)
}

func TestQuery_TopKLargerThanCollection(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)
	ctx := context.Background()

	err := store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}},
		[]string{"single"},
		[]domain.Metadata{testMetadata("a.txt", 0)},
		[]string{"a.txt_chunk_0"})
	require.NoError(t, err)

	result, err := store.Query(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, result.Matches, 1)
}

func TestQuery_Validation(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)
	ctx := context.Background()

	_, err := store.Query(ctx, []float32{1, 0, 0}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = store.Query(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestQuery_EmptyCollection(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)

	result, err := store.Query(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Equal(t, domain.ScoreSimilarity, result.ScoreKind)
}

func TestQuery_StaleRowsFromSmallerVectorSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	ctx := context.Background()

	store, err := New(Config{Path: path, Collection: "test_documents", VectorSize: 3}, nil)
	require.NoError(t, err)

	err = store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}},
		[]string{"written at three dims"},
		[]domain.Metadata{testMetadata("a.txt", 0)},
		[]string{"a.txt_chunk_0"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same file under a larger vector_size keeps the old
	// rows; scanning them must report the mismatch, not score them.
	reopened, err := New(Config{Path: path, Collection: "test_documents", VectorSize: 5}, nil)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = reopened.Query(ctx, []float32{1, 0, 0, 0, 0}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestCollectionInfo_LiveCount(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)
	ctx := context.Background()

	info, err := store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Count)
	assert.Equal(t, "test_documents", info.Name)
	assert.Equal(t, Provider, info.Provider)
	assert.Equal(t, 3, info.VectorSize)
	assert.Equal(t, domain.MetricCosine, info.DistanceMetric)

	err = store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		[]string{"one", "two", "three"},
		[]domain.Metadata{testMetadata("a.txt", 0), testMetadata("a.txt", 1), testMetadata("a.txt", 2)},
		[]string{"a.txt_chunk_0", "a.txt_chunk_1", "a.txt_chunk_2"})
	require.NoError(t, err)

	info, err = store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Count)
}

func TestDeleteCollection_ThenReuse(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)
	ctx := context.Background()

	err := store.AddDocuments(ctx,
		[][]float32{{1, 0, 0}},
		[]string{"doomed"},
		[]domain.Metadata{testMetadata("a.txt", 0)},
		[]string{"a.txt_chunk_0"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteCollection(ctx))

	info, err := store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Count)

	// The collection comes back on the next write without any
	// explicit recreation step.
	err = store.AddDocuments(ctx,
		[][]float32{{0, 1, 0}},
		[]string{"reborn"},
		[]domain.Metadata{testMetadata("b.txt", 0)},
		[]string{"b.txt_chunk_0"})
	require.NoError(t, err)

	info, err = store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Count)

	// Deleting an already-empty collection is not an error.
	assert.NoError(t, store.DeleteCollection(ctx))
}

func TestQuery_MetadataRoundTrip(t *testing.T) {
	store := setupStore(t, domain.MetricCosine)
	ctx := context.Background()

	meta := domain.Metadata{
		Filename:       "report.json",
		SourcePath:     "/data/report.json",
		FileType:       "json",
		FileSize:       2048,
		CharacterCount: 512,
		ChunkIndex:     3,
		Preview:        "quarterly numbers...",
		Extra:          map[string]string{"json_key": "q3", "encoding": "utf-8"},
	}

	err := store.AddDocuments(ctx,
		[][]float32{{0.5, 0.5, 0}},
		[]string{"quarterly numbers in full"},
		[]domain.Metadata{meta},
		[]string{"report.json#q3_chunk_3"})
	require.NoError(t, err)

	result, err := store.Query(ctx, []float32{0.5, 0.5, 0}, 1)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)

	got := result.Matches[0]
	assert.Equal(t, "report.json#q3_chunk_3", got.ID)
	assert.Equal(t, "quarterly numbers in full", got.Text)
	assert.Equal(t, meta, got.Metadata)
}
