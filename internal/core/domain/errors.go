package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors. Every public operation
// wraps one of these sentinels so callers can match with errors.Is and
// decide whether to retry, reconfigure, or abort.
var (
	// Loading Errors.

	// ErrNotFound indicates a missing file or an absent collection.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedFormat indicates a file extension outside the
	// supported set.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrLoad indicates a file was found but its content could not be
	// extracted.
	ErrLoad = errors.New("load failed")

	// Vector Store Errors.

	// ErrDimensionMismatch indicates a vector whose length differs from
	// the collection's configured dimensionality.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrConnection indicates the backend is unreachable or rejected the
	// credential.
	ErrConnection = errors.New("connection failed")

	// ErrInvalidArgument indicates a malformed call, such as mismatched
	// slice lengths or a non-positive topK.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBackend wraps any backend failure not covered by a more
	// specific kind. Backend-native error types never cross the store
	// boundary undisguised.
	ErrBackend = errors.New("backend error")

	// Provider Errors.

	// ErrEmbedding indicates the embedding provider failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the generation provider failed.
	ErrGeneration = errors.New("generation failed")

	// ErrConfiguration indicates missing or contradictory configuration,
	// such as an absent API credential. Raised at construction time, not
	// mid-call.
	ErrConfiguration = errors.New("configuration error")
)
