package driving

import (
	"context"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

// AnswerOptions configures a single question.
type AnswerOptions struct {
	// TopK overrides the configured number of records to retrieve.
	// Zero means use the service default.
	TopK int
}

// AnswerService answers questions grounded on the stored collection.
type AnswerService interface {
	// Answer embeds the question, retrieves the most relevant records and
	// asks the generation provider for a grounded response.
	Answer(ctx context.Context, question string, opts AnswerOptions) (domain.Answer, error)

	// Retrieve returns the most relevant records without generating an
	// answer.
	Retrieve(ctx context.Context, question string, opts AnswerOptions) (domain.QueryResult, error)
}
