package mcp

import (
	"context"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer domain.Answer
	result domain.QueryResult
	err    error

	lastQuestion string
	lastOpts     driving.AnswerOptions
}

func (m *mockAnswerService) Answer(
	_ context.Context,
	question string,
	opts driving.AnswerOptions,
) (domain.Answer, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	return m.answer, m.err
}

func (m *mockAnswerService) Retrieve(
	_ context.Context,
	question string,
	opts driving.AnswerOptions,
) (domain.QueryResult, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	return m.result, m.err
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	info    domain.CollectionInfo
	err     error
	cleared bool
}

func (m *mockCollectionService) Stats(_ context.Context) (domain.CollectionInfo, error) {
	return m.info, m.err
}

func (m *mockCollectionService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}
