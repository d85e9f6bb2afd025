package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// DefaultTopK is the number of chunks retrieved when the caller does
// not choose one.
const DefaultTopK = 5

const groundedSystemPrompt = `You are a helpful AI assistant. Answer the user's question based on the provided context.

Context:
%s

Instructions:
- Use only the information provided in the context
- If the answer is not in the context, say so
- Be concise and accurate
- Cite relevant parts of the context when possible`

const emptyContextSystemPrompt = `You are a helpful AI assistant. No documents matching the user's question were found in the knowledge base.

Instructions:
- Tell the user that the knowledge base has no information on their question
- Do not answer from outside knowledge`

// AnswerService answers questions over the indexed collection.
type AnswerService struct {
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	generator driven.GenerationService
	topK      int
	log       *logger.Logger
}

// NewAnswerService creates a new answer service. The generator may be
// nil, which leaves Retrieve working and makes Answer fail with a
// configuration error.
func NewAnswerService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	generator driven.GenerationService,
	topK int,
	log *logger.Logger,
) *AnswerService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if log == nil {
		log = logger.Discard()
	}
	return &AnswerService{
		embedder:  embedder,
		store:     store,
		generator: generator,
		topK:      topK,
		log:       log,
	}
}

// Retrieve embeds the question once and returns the most relevant
// chunks, best first.
func (s *AnswerService) Retrieve(ctx context.Context, question string, opts driving.AnswerOptions) (domain.QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.QueryResult{}, fmt.Errorf("%w: question must not be empty", domain.ErrInvalidArgument)
	}

	s.log.Info("retrieving documents for query: %s", question)

	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return domain.QueryResult{}, err
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.topK
	}

	result, err := s.store.Query(ctx, embedding, topK)
	if err != nil {
		return domain.QueryResult{}, err
	}
	s.log.Debug("retrieved %d relevant chunks", len(result.Matches))
	return result, nil
}

// Answer retrieves context for the question and generates a grounded
// response. When nothing is retrieved, the model is told so instead
// of being handed an empty context to improvise over.
func (s *AnswerService) Answer(ctx context.Context, question string, opts driving.AnswerOptions) (domain.Answer, error) {
	if s.generator == nil {
		return domain.Answer{}, fmt.Errorf("%w: no generation provider configured", domain.ErrConfiguration)
	}

	result, err := s.Retrieve(ctx, question, opts)
	if err != nil {
		return domain.Answer{}, err
	}

	question = strings.TrimSpace(question)
	s.log.Info("generating response for query: %s", question)

	response, err := s.generator.Generate(ctx, systemPrompt(result.Matches), question)
	if err != nil {
		return domain.Answer{}, err
	}

	return domain.Answer{
		Question:    question,
		Response:    response,
		Retrieved:   result.Matches,
		SourceCount: len(result.Matches),
	}, nil
}

// systemPrompt assembles the grounding prompt from the retrieved
// chunks in relevance order.
func systemPrompt(matches []domain.QueryMatch) string {
	if len(matches) == 0 {
		return emptyContextSystemPrompt
	}
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return fmt.Sprintf(groundedSystemPrompt, strings.Join(texts, "\n\n"))
}
