package domain

import "fmt"

// DistanceMetric identifies how a collection measures vector similarity.
type DistanceMetric string

const (
	// MetricCosine measures the cosine of the angle between vectors.
	MetricCosine DistanceMetric = "cosine"

	// MetricEuclidean measures straight-line distance.
	MetricEuclidean DistanceMetric = "euclidean"

	// MetricDot measures the inner product.
	MetricDot DistanceMetric = "dot"
)

// ParseDistanceMetric validates a configured metric name.
func ParseDistanceMetric(s string) (DistanceMetric, error) {
	switch DistanceMetric(s) {
	case MetricCosine, MetricEuclidean, MetricDot:
		return DistanceMetric(s), nil
	default:
		return "", fmt.Errorf("%w: unknown distance metric %q", ErrInvalidArgument, s)
	}
}

// ScoreKind declares how a QueryResult's scores are to be read.
// Backends report either similarities or distances natively; each adapter
// declares which one it returns and guarantees relevance ordering, so
// callers above the store boundary only ever rely on ordering.
type ScoreKind string

const (
	// ScoreSimilarity means higher scores are more relevant.
	ScoreSimilarity ScoreKind = "similarity"

	// ScoreDistance means lower scores are more relevant.
	ScoreDistance ScoreKind = "distance"
)

// QueryMatch is one retrieved record with its native relevance score.
// A record is a chunk as stored in a backend: its deterministic ID, its
// vector, its text and the parent document's metadata extended for the
// chunk.
type QueryMatch struct {
	// ID is the record identifier.
	ID string

	// Text is the stored chunk text.
	Text string

	// Score is the backend-native relevance score. Read it according to
	// the enclosing result's ScoreKind; never compare scores across
	// different backends.
	Score float64

	// Metadata is the stored record metadata.
	Metadata Metadata
}

// QueryResult holds retrieval matches ordered from most to least relevant,
// regardless of the backend's native ordering or sign convention.
type QueryResult struct {
	// Matches are the retrieved records, best first.
	Matches []QueryMatch

	// ScoreKind declares the convention of the match scores.
	ScoreKind ScoreKind
}

// CollectionInfo describes a collection's identity and live size.
type CollectionInfo struct {
	// Name is the collection (or class) name.
	Name string

	// Count is the server-side record count at the time of the call.
	Count int64

	// Provider is the backend tag the collection lives in.
	Provider string

	// VectorSize is the collection's fixed embedding dimensionality.
	VectorSize int

	// DistanceMetric is the collection's similarity measure.
	DistanceMetric DistanceMetric
}
