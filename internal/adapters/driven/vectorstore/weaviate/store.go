// Package weaviate provides the Weaviate vector store backend over
// its REST and GraphQL APIs.
//
// Objects are stored in a class with the vectorizer disabled, since
// embeddings are computed upstream. Weaviate requires UUID object IDs,
// so logical record IDs are mapped to deterministic SHA-1 UUIDs and
// kept in a record_id property so queries can return them.
package weaviate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

// Provider is the configuration tag selecting this backend.
const Provider = "weaviate"

const defaultTimeout = 20 * time.Second

// Config holds the Weaviate backend settings.
type Config struct {
	// URL is the Weaviate server base URL.
	URL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Class is the Weaviate class name. Weaviate requires it to
	// start with an uppercase letter.
	Class string

	// VectorSize is the fixed embedding dimensionality.
	VectorSize int

	// Metric is the distance metric the class is created with.
	Metric domain.DistanceMetric

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// Store is the Weaviate-backed vector store.
// It implements the VectorStore port.
type Store struct {
	baseURL    string
	apiKey     string
	class      string
	vectorSize int
	metric     domain.DistanceMetric
	client     *http.Client
	log        *logger.Logger

	// mu serializes writes and guards the ensured flag so a
	// delete/recreate sequence never races a concurrent upsert.
	mu      sync.Mutex
	ensured bool
}

var _ driven.VectorStore = (*Store)(nil)

// New connects to Weaviate and ensures the class exists.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: weaviate store requires a url", domain.ErrConfiguration)
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("%w: vector size must be positive, got %d", domain.ErrConfiguration, cfg.VectorSize)
	}
	if cfg.Class == "" {
		cfg.Class = "Document"
	}
	if cfg.Metric == "" {
		cfg.Metric = domain.MetricCosine
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}

	s := &Store{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		class:      cfg.Class,
		vectorSize: cfg.VectorSize,
		metric:     cfg.Metric,
		client:     &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureClass(ctx); err != nil {
		return nil, err
	}

	log.Debug("weaviate vector store ready: %s (class %s, %d dims, %s)",
		s.baseURL, s.class, s.vectorSize, s.metric)
	return s, nil
}

// ensureClass creates the class when it is missing.
// Callers must hold s.mu.
func (s *Store) ensureClass(ctx context.Context) error {
	if s.ensured {
		return nil
	}
	_, status, err := s.doRequest(ctx, http.MethodGet, "/v1/schema/"+s.class, nil)
	if err == nil {
		s.ensured = true
		return nil
	}
	if status != http.StatusNotFound {
		return err
	}

	schema := map[string]any{
		"class":       s.class,
		"description": "Document chunks with precomputed embeddings",
		"vectorizer":  "none",
		"vectorIndexConfig": map[string]any{
			"distance": distanceName(s.metric),
		},
		"properties": []map[string]any{
			{"name": "record_id", "dataType": []string{"text"}, "description": "Logical record ID"},
			{"name": "content", "dataType": []string{"text"}, "description": "Chunk content"},
			{"name": "filename", "dataType": []string{"text"}, "description": "Source filename"},
			{"name": "file_path", "dataType": []string{"text"}, "description": "Full file path"},
			{"name": "file_type", "dataType": []string{"text"}, "description": "File type"},
			{"name": "chunk_id", "dataType": []string{"int"}, "description": "Chunk index within the document"},
			{"name": "chunk_text", "dataType": []string{"text"}, "description": "Preview of the chunk"},
			{"name": "file_size", "dataType": []string{"int"}, "description": "File size in bytes"},
			{"name": "character_count", "dataType": []string{"int"}, "description": "Character count of the document"},
			{"name": "extra", "dataType": []string{"text"}, "description": "Loader-specific metadata as JSON"},
		},
	}
	if _, _, err := s.doRequest(ctx, http.MethodPost, "/v1/schema", schema); err != nil {
		return err
	}
	s.log.Debug("created weaviate class %s", s.class)
	s.ensured = true
	return nil
}

// AddDocuments upserts one object per id through the batch endpoint.
func (s *Store) AddDocuments(ctx context.Context, embeddings [][]float32, texts []string, metadatas []domain.Metadata, ids []string) error {
	if err := validateParallel(embeddings, texts, metadatas, ids); err != nil {
		return err
	}
	for i, emb := range embeddings {
		if len(emb) != s.vectorSize {
			return fmt.Errorf("%w: embedding %d has length %d, class %q expects %d",
				domain.ErrDimensionMismatch, i, len(emb), s.class, s.vectorSize)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureClass(ctx); err != nil {
		return err
	}

	objects := make([]map[string]any, 0, len(ids))
	for i := range ids {
		props, err := buildProperties(ids[i], texts[i], metadatas[i])
		if err != nil {
			return fmt.Errorf("%w: encode extra metadata for %s: %v", domain.ErrBackend, ids[i], err)
		}
		objects = append(objects, map[string]any{
			"class":      s.class,
			"id":         objectID(ids[i]),
			"properties": props,
			"vector":     embeddings[i],
		})
	}

	data, _, err := s.doRequest(ctx, http.MethodPost, "/v1/batch/objects", map[string]any{"objects": objects})
	if err != nil {
		return err
	}

	// The batch endpoint reports per-object failures inside a 200
	// response.
	var results []struct {
		Result struct {
			Errors struct {
				Error []struct {
					Message string `json:"message"`
				} `json:"error"`
			} `json:"errors"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &results); err == nil {
		for _, r := range results {
			if len(r.Result.Errors.Error) > 0 {
				return fmt.Errorf("%w: batch insert: %s", domain.ErrBackend, r.Result.Errors.Error[0].Message)
			}
		}
	}

	s.log.Debug("upserted %d objects into %s", len(ids), s.class)
	return nil
}

// Query runs a nearVector GraphQL search. Weaviate ranks by distance,
// so results arrive best first with ascending scores.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int) (domain.QueryResult, error) {
	if topK <= 0 {
		return domain.QueryResult{}, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidArgument, topK)
	}
	if len(embedding) != s.vectorSize {
		return domain.QueryResult{}, fmt.Errorf("%w: query vector has length %d, class %q expects %d",
			domain.ErrDimensionMismatch, len(embedding), s.class, s.vectorSize)
	}

	vector, err := json.Marshal(embedding)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: encode query vector: %v", domain.ErrBackend, err)
	}
	query := fmt.Sprintf(`{
		Get {
			%s(nearVector: {vector: %s}, limit: %d) {
				record_id content filename file_path file_type
				chunk_id chunk_text file_size character_count extra
				_additional { distance }
			}
		}
	}`, s.class, vector, topK)

	data, err := s.graphql(ctx, query)
	if err != nil {
		if isMissingClass(err) {
			return domain.QueryResult{ScoreKind: domain.ScoreDistance}, nil
		}
		return domain.QueryResult{}, err
	}

	var parsed struct {
		Data struct {
			Get map[string][]objectFields `json:"Get"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: decode search response: %v", domain.ErrBackend, err)
	}

	objects := parsed.Data.Get[s.class]
	matches := make([]domain.QueryMatch, 0, len(objects))
	for _, obj := range objects {
		m, err := obj.toMatch()
		if err != nil {
			return domain.QueryResult{}, fmt.Errorf("%w: decode object: %v", domain.ErrBackend, err)
		}
		matches = append(matches, m)
	}
	return domain.QueryResult{Matches: matches, ScoreKind: domain.ScoreDistance}, nil
}

// CollectionInfo reports a live object count via a meta aggregation.
func (s *Store) CollectionInfo(ctx context.Context) (domain.CollectionInfo, error) {
	info := domain.CollectionInfo{
		Name:           s.class,
		Provider:       Provider,
		VectorSize:     s.vectorSize,
		DistanceMetric: s.metric,
	}

	query := fmt.Sprintf(`{ Aggregate { %s { meta { count } } } }`, s.class)
	data, err := s.graphql(ctx, query)
	if err != nil {
		if isMissingClass(err) {
			return info, nil
		}
		return domain.CollectionInfo{}, err
	}

	var parsed struct {
		Data struct {
			Aggregate map[string][]struct {
				Meta struct {
					Count int64 `json:"count"`
				} `json:"meta"`
			} `json:"Aggregate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("%w: decode aggregate response: %v", domain.ErrBackend, err)
	}
	if rows := parsed.Data.Aggregate[s.class]; len(rows) > 0 {
		info.Count = rows[0].Meta.Count
	}
	return info, nil
}

// DeleteCollection drops the class and its objects. The next write
// recreates the class with the configured schema.
func (s *Store) DeleteCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, status, err := s.doRequest(ctx, http.MethodDelete, "/v1/schema/"+s.class, nil)
	if err != nil && status != http.StatusNotFound {
		return err
	}
	s.ensured = false
	s.log.Debug("deleted weaviate class %s", s.class)
	return nil
}

// objectFields is the GraphQL shape of a stored chunk.
type objectFields struct {
	RecordID       string `json:"record_id"`
	Content        string `json:"content"`
	Filename       string `json:"filename"`
	FilePath       string `json:"file_path"`
	FileType       string `json:"file_type"`
	ChunkID        int    `json:"chunk_id"`
	ChunkText      string `json:"chunk_text"`
	FileSize       int64  `json:"file_size"`
	CharacterCount int    `json:"character_count"`
	Extra          string `json:"extra"`
	Additional     struct {
		Distance float64 `json:"distance"`
	} `json:"_additional"`
}

func (o objectFields) toMatch() (domain.QueryMatch, error) {
	var extra map[string]string
	if o.Extra != "" {
		if err := json.Unmarshal([]byte(o.Extra), &extra); err != nil {
			return domain.QueryMatch{}, err
		}
	}
	return domain.QueryMatch{
		ID:    o.RecordID,
		Text:  o.Content,
		Score: o.Additional.Distance,
		Metadata: domain.Metadata{
			Filename:       o.Filename,
			SourcePath:     o.FilePath,
			FileType:       o.FileType,
			FileSize:       o.FileSize,
			CharacterCount: o.CharacterCount,
			ChunkIndex:     o.ChunkID,
			Preview:        o.ChunkText,
			Extra:          extra,
		},
	}, nil
}

// graphql posts a query and surfaces GraphQL-level errors, which
// Weaviate returns inside a 200 response.
func (s *Store) graphql(ctx context.Context, query string) ([]byte, error) {
	data, _, err := s.doRequest(ctx, http.MethodPost, "/v1/graphql", map[string]any{"query": query})
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("%w: graphql: %s", domain.ErrBackend, envelope.Errors[0].Message)
	}
	return data, nil
}

// isMissingClass recognises the GraphQL error Weaviate emits when the
// class is not in the schema, which reads as an empty collection.
func isMissingClass(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Cannot query field")
}

func (s *Store) doRequest(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: encode request: %v", domain.ErrBackend, err)
		}
		buf = bytes.NewBuffer(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, buf)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request: %v", domain.ErrBackend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: weaviate request failed: %v", domain.ErrConnection, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, resp.StatusCode, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, resp.StatusCode, fmt.Errorf("%w: weaviate rejected credentials (status %d)", domain.ErrConnection, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, fmt.Errorf("%w: weaviate %s %s", domain.ErrNotFound, method, path)
	default:
		return nil, resp.StatusCode, fmt.Errorf("%w: weaviate status %d: %s",
			domain.ErrBackend, resp.StatusCode, strings.TrimSpace(string(data)))
	}
}

// objectID derives the stable UUID Weaviate stores for a logical
// record ID.
func objectID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func buildProperties(id, text string, meta domain.Metadata) (map[string]any, error) {
	preview := meta.Preview
	if preview == "" {
		preview = domain.Preview(text)
	}
	props := map[string]any{
		"record_id":       id,
		"content":         text,
		"filename":        meta.Filename,
		"file_path":       meta.SourcePath,
		"file_type":       meta.FileType,
		"chunk_id":        meta.ChunkIndex,
		"chunk_text":      preview,
		"file_size":       meta.FileSize,
		"character_count": meta.CharacterCount,
	}
	if len(meta.Extra) > 0 {
		extra, err := json.Marshal(meta.Extra)
		if err != nil {
			return nil, err
		}
		props["extra"] = string(extra)
	}
	return props, nil
}

func distanceName(m domain.DistanceMetric) string {
	switch m {
	case domain.MetricEuclidean:
		return "l2-squared"
	case domain.MetricDot:
		return "dot"
	default:
		return "cosine"
	}
}

func validateParallel(embeddings [][]float32, texts []string, metadatas []domain.Metadata, ids []string) error {
	n := len(ids)
	if len(embeddings) != n || len(texts) != n || len(metadatas) != n {
		return fmt.Errorf("%w: mismatched argument lengths: %d embeddings, %d texts, %d metadatas, %d ids",
			domain.ErrInvalidArgument, len(embeddings), len(texts), len(metadatas), n)
	}
	return nil
}
