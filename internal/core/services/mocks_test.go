package services

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockLoader implements driven.DocumentLoader for testing. Documents
// are keyed by base name so tests control what each path loads.
type mockLoader struct {
	docs    map[string][]domain.RawDocument
	loadErr map[string]error
}

func newMockLoader() *mockLoader {
	return &mockLoader{
		docs:    make(map[string][]domain.RawDocument),
		loadErr: make(map[string]error),
	}
}

func (m *mockLoader) Load(_ context.Context, path string) ([]domain.RawDocument, error) {
	base := filepath.Base(path)
	if err := m.loadErr[base]; err != nil {
		return nil, err
	}
	return m.docs[base], nil
}

func (m *mockLoader) LoadDirectory(_ context.Context, _ string) ([]domain.RawDocument, error) {
	return nil, nil
}

func (m *mockLoader) Supports(path string) bool {
	return filepath.Ext(path) == ".txt"
}

// mockSplitter implements driven.TextSplitter, splitting on "|" so
// tests choose the chunking explicitly.
type mockSplitter struct{}

func (mockSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return strings.Split(text, "|")
}

// mockEmbedder implements driven.EmbeddingService with a fixed-size
// deterministic vector per text.
type mockEmbedder struct {
	embedErr error
	batches  [][]string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batches = append(m.batches, texts)
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = []float32{float32(len(t)), 1, 0}
	}
	return vecs, nil
}

func (m *mockEmbedder) Dimensions() int { return 3 }

func (m *mockEmbedder) ModelName() string { return "mock-embedder" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// addCall captures one AddDocuments invocation.
type addCall struct {
	embeddings [][]float32
	texts      []string
	metadatas  []domain.Metadata
	ids        []string
}

// mockVectorStore implements driven.VectorStore, recording writes and
// serving canned query results.
type mockVectorStore struct {
	adds        []addCall
	addErr      error
	queryResult domain.QueryResult
	queryErr    error
	queryTopK   int
	queryVector []float32
	info        domain.CollectionInfo
	deleted     bool
}

func (m *mockVectorStore) AddDocuments(_ context.Context, embeddings [][]float32, texts []string, metadatas []domain.Metadata, ids []string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.adds = append(m.adds, addCall{embeddings: embeddings, texts: texts, metadatas: metadatas, ids: ids})
	return nil
}

func (m *mockVectorStore) Query(_ context.Context, embedding []float32, topK int) (domain.QueryResult, error) {
	if m.queryErr != nil {
		return domain.QueryResult{}, m.queryErr
	}
	m.queryVector = embedding
	m.queryTopK = topK
	return m.queryResult, nil
}

func (m *mockVectorStore) CollectionInfo(_ context.Context) (domain.CollectionInfo, error) {
	return m.info, nil
}

func (m *mockVectorStore) DeleteCollection(_ context.Context) error {
	m.deleted = true
	return nil
}

// mockGenerator implements driven.GenerationService, recording the
// prompts it receives.
type mockGenerator struct {
	response string
	genErr   error
	system   string
	user     string
}

func (m *mockGenerator) Generate(_ context.Context, system, user string) (string, error) {
	if m.genErr != nil {
		return "", m.genErr
	}
	m.system = system
	m.user = user
	return m.response, nil
}

func (m *mockGenerator) ModelName() string { return "mock-generator" }

func (m *mockGenerator) Ping(_ context.Context) error { return nil }

func (m *mockGenerator) Close() error { return nil }

// mockProgress implements driven.ProgressReporter, counting calls.
type mockProgress struct {
	total      int
	increments int
	finished   bool
}

func (m *mockProgress) Start(total int) { m.total = total }

func (m *mockProgress) Increment() { m.increments++ }

func (m *mockProgress) Finish() { m.finished = true }
