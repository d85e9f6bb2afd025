// Package domain defines the core business entities for Corpora.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Extracted text plus metadata from one loaded file (or file element)
//   - Metadata: Structured document description with an open extension map
//   - QueryResult: Backend-agnostic retrieval results in relevance order
//   - Answer: A grounded response with its supporting records
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
