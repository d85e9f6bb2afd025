package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the document collection"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks to ground the answer on (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer      string        `json:"answer"`
	Sources     []MatchOutput `json:"sources"`
	SourceCount int           `json:"source_count"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the query to match against stored chunks"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Matches []MatchOutput `json:"matches"`
	Count   int           `json:"count"`

	// ScoreKind says how to read the scores: "similarity" means higher
	// is better, "distance" means lower is better.
	ScoreKind string `json:"score_kind"`
}

// MatchOutput represents a single retrieved chunk.
type MatchOutput struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Filename   string  `json:"filename,omitempty"`
	Path       string  `json:"path,omitempty"`
	FileType   string  `json:"file_type,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
}

// StatsInput is the input schema for the collection_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the collection_stats tool.
type StatsOutput struct {
	Name           string `json:"name"`
	Provider       string `json:"provider"`
	VectorSize     int    `json:"vector_size"`
	DistanceMetric string `json:"distance_metric"`
	Count          int64  `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question grounded on the document collection",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the chunks most relevant to a query, without generating an answer",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "collection_stats",
		Description: "Report the collection's backend, vector configuration and live record count",
	}, s.handleStats)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	opts := driving.AnswerOptions{TopK: input.TopK}
	answer, err := s.ports.Answer.Answer(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:      answer.Response,
		Sources:     make([]MatchOutput, len(answer.Retrieved)),
		SourceCount: answer.SourceCount,
	}
	for i := range answer.Retrieved {
		output.Sources[i] = toMatchOutput(answer.Retrieved[i])
	}
	return nil, output, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	opts := driving.AnswerOptions{TopK: input.TopK}
	result, err := s.ports.Answer.Retrieve(ctx, input.Query, opts)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Matches:   make([]MatchOutput, len(result.Matches)),
		Count:     len(result.Matches),
		ScoreKind: string(result.ScoreKind),
	}
	for i := range result.Matches {
		output.Matches[i] = toMatchOutput(result.Matches[i])
	}
	return nil, output, nil
}

// handleStats handles the collection_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if s.ports.Collection == nil {
		return nil, StatsOutput{}, ErrMissingCollectionService
	}

	info, err := s.ports.Collection.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	return nil, StatsOutput{
		Name:           info.Name,
		Provider:       info.Provider,
		VectorSize:     info.VectorSize,
		DistanceMetric: string(info.DistanceMetric),
		Count:          info.Count,
	}, nil
}

func toMatchOutput(m domain.QueryMatch) MatchOutput {
	return MatchOutput{
		ID:         m.ID,
		Text:       m.Text,
		Score:      m.Score,
		Filename:   m.Metadata.Filename,
		Path:       m.Metadata.SourcePath,
		FileType:   m.Metadata.FileType,
		ChunkIndex: m.Metadata.ChunkIndex,
	}
}
