package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driving"
)

// --- Mock implementations ---

type mockIngestService struct {
	stats domain.IngestStats
	err   error

	fileCalls []string
	dirCalls  []string
	lastOpts  driving.IngestOptions
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (domain.IngestStats, error) {
	m.fileCalls = append(m.fileCalls, path)
	if m.err != nil {
		return domain.IngestStats{}, m.err
	}
	return m.stats, nil
}

func (m *mockIngestService) IngestDirectory(_ context.Context, dir string, opts driving.IngestOptions) (domain.IngestStats, error) {
	m.dirCalls = append(m.dirCalls, dir)
	m.lastOpts = opts
	if m.err != nil {
		return domain.IngestStats{}, m.err
	}
	return m.stats, nil
}

type mockAnswerService struct {
	answer domain.Answer
	result domain.QueryResult
	err    error

	lastQuestion string
	lastOpts     driving.AnswerOptions
}

func (m *mockAnswerService) Answer(_ context.Context, question string, opts driving.AnswerOptions) (domain.Answer, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	return m.answer, nil
}

func (m *mockAnswerService) Retrieve(_ context.Context, question string, opts driving.AnswerOptions) (domain.QueryResult, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	if m.err != nil {
		return domain.QueryResult{}, m.err
	}
	return m.result, nil
}

type mockCollectionService struct {
	info     domain.CollectionInfo
	statsErr error
	clearErr error

	cleared bool
}

func (m *mockCollectionService) Stats(_ context.Context) (domain.CollectionInfo, error) {
	if m.statsErr != nil {
		return domain.CollectionInfo{}, m.statsErr
	}
	return m.info, nil
}

func (m *mockCollectionService) Clear(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared = true
	return nil
}

// setupTestServices installs mocks as the package services and restores
// the previous ones when the test finishes. Pass nil to leave a service
// unconfigured; as long as one service is set, commands run without a
// configuration file.
func setupTestServices(t *testing.T, ingest driving.IngestService, answer driving.AnswerService, collection driving.CollectionService) {
	t.Helper()
	prevIngest, prevAnswer, prevCollection := ingestService, answerService, collectionService
	ingestService, answerService, collectionService = ingest, answer, collection
	t.Cleanup(func() {
		ingestService, answerService, collectionService = prevIngest, prevAnswer, prevCollection
	})
}

// writeTestFile creates a file in a fresh temp dir and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
