// Package mcp provides a Model Context Protocol server adapter. It
// lets AI assistants query the local document collection through the
// ask, retrieve and collection_stats tools.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")

// ErrMissingCollectionService is returned when a collection operation is
// invoked without a collection service.
var ErrMissingCollectionService = errors.New("mcp: collection service is required")
