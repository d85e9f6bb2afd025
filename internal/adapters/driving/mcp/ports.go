package mcp

import (
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer provides retrieval and grounded answering.
	Answer driving.AnswerService

	// Collection reports collection statistics.
	Collection driving.CollectionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	// Collection is optional; the stats tool reports its absence.
	return nil
}
