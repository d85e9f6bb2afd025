package driven

import "context"

// GenerationService synthesises an answer from a system instruction and a
// user message. The answer path is the only consumer; ingestion runs
// without one.
//
// Implementations may include:
//   - OpenAI-compatible chat APIs (OpenAI, Groq, local inference servers)
//   - Anthropic (Claude)
//   - Ollama (local models)
//
// Failures are surfaced as domain.ErrGeneration.
type GenerationService interface {
	// Generate produces a completion for the user message under the given
	// system instruction. The caller composes both; this service never
	// invents context of its own.
	Generate(ctx context.Context, system, user string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
