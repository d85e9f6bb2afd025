// Package qdrant provides the Qdrant vector store backend over its
// REST API.
//
// Qdrant restricts point IDs to UUIDs or integers, so logical record
// IDs are mapped to deterministic SHA-1 UUIDs. The same record ID
// always yields the same point ID, which is what makes re-ingestion
// an upsert instead of a duplicate. The logical ID travels in the
// payload and is restored on the way out.
package qdrant

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
const Provider = "qdrant"

const defaultTimeout = 20 * time.Second

// Config holds the Qdrant backend settings.
type Config struct {
	// URL is the Qdrant server base URL.
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection is the collection name.
	Collection string

	// VectorSize is the fixed embedding dimensionality.
	VectorSize int

	// Metric is the distance metric the collection is created with.
	Metric domain.DistanceMetric

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// Store is the Qdrant-backed vector store.
// It implements the VectorStore port.
type Store struct {
	baseURL    string
	apiKey     string
	collection string
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

// New connects to Qdrant and ensures the collection exists.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: qdrant store requires a url", domain.ErrConfiguration)
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("%w: vector size must be positive, got %d", domain.ErrConfiguration, cfg.VectorSize)
	}
	if cfg.Collection == "" {
		cfg.Collection = "documents"
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
		collection: cfg.Collection,
		vectorSize: cfg.VectorSize,
		metric:     cfg.Metric,
		client:     &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}

	log.Debug("qdrant vector store ready: %s (collection %s, %d dims, %s)",
		s.baseURL, s.collection, s.vectorSize, s.metric)
	return s, nil
}

// ensureCollection creates the collection when it is missing.
// Callers must hold s.mu.
func (s *Store) ensureCollection(ctx context.Context) error {
	if s.ensured {
		return nil
	}
	_, status, err := s.doRequest(ctx, http.MethodGet, "/collections/"+s.collection, nil)
	if err == nil {
		s.ensured = true
		return nil
	}
	if status != http.StatusNotFound {
		return err
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     s.vectorSize,
			"distance": distanceName(s.metric),
		},
	}
	if _, _, err := s.doRequest(ctx, http.MethodPut, "/collections/"+s.collection, req); err != nil {
		return err
	}
	s.log.Debug("created qdrant collection %s", s.collection)
	s.ensured = true
	return nil
}

// AddDocuments upserts one point per id. The write waits for Qdrant to
// acknowledge so a following query sees the new points.
func (s *Store) AddDocuments(ctx context.Context, embeddings [][]float32, texts []string, metadatas []domain.Metadata, ids []string) error {
	if err := validateParallel(embeddings, texts, metadatas, ids); err != nil {
		return err
	}
	for i, emb := range embeddings {
		if len(emb) != s.vectorSize {
			return fmt.Errorf("%w: embedding %d has length %d, collection %q expects %d",
				domain.ErrDimensionMismatch, i, len(emb), s.collection, s.vectorSize)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	points := make([]map[string]any, 0, len(ids))
	for i := range ids {
		points = append(points, map[string]any{
			"id":      pointID(ids[i]),
			"vector":  embeddings[i],
			"payload": buildPayload(ids[i], texts[i], metadatas[i]),
		})
	}
	req := map[string]any{"points": points}
	if _, _, err := s.doRequest(ctx, http.MethodPut, "/collections/"+s.collection+"/points?wait=true", req); err != nil {
		return err
	}
	s.log.Debug("upserted %d points into %s", len(ids), s.collection)
	return nil
}

// Query searches the collection and returns the topK best points in
// the order Qdrant ranks them.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int) (domain.QueryResult, error) {
	if topK <= 0 {
		return domain.QueryResult{}, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidArgument, topK)
	}
	if len(embedding) != s.vectorSize {
		return domain.QueryResult{}, fmt.Errorf("%w: query vector has length %d, collection %q expects %d",
			domain.ErrDimensionMismatch, len(embedding), s.collection, s.vectorSize)
	}

	req := map[string]any{
		"vector":       embedding,
		"limit":        topK,
		"with_payload": true,
	}
	data, status, err := s.doRequest(ctx, http.MethodPost, "/collections/"+s.collection+"/points/search", req)
	if status == http.StatusNotFound {
		// A deleted collection reads as empty until the next write
		// recreates it.
		return domain.QueryResult{ScoreKind: s.scoreKind()}, nil
	}
	if err != nil {
		return domain.QueryResult{}, err
	}

	var parsed struct {
		Result []struct {
			ID      any             `json:"id"`
			Score   float64         `json:"score"`
			Payload json.RawMessage `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: decode search response: %v", domain.ErrBackend, err)
	}

	matches := make([]domain.QueryMatch, 0, len(parsed.Result))
	for _, item := range parsed.Result {
		m, err := parsePayload(item.Payload)
		if err != nil {
			return domain.QueryResult{}, fmt.Errorf("%w: decode point payload: %v", domain.ErrBackend, err)
		}
		if m.ID == "" {
			m.ID = fmt.Sprintf("%v", item.ID)
		}
		m.Score = item.Score
		matches = append(matches, m)
	}
	return domain.QueryResult{Matches: matches, ScoreKind: s.scoreKind()}, nil
}

// CollectionInfo reports the server-side point count and the
// collection's actual vector configuration.
func (s *Store) CollectionInfo(ctx context.Context) (domain.CollectionInfo, error) {
	info := domain.CollectionInfo{
		Name:           s.collection,
		Provider:       Provider,
		VectorSize:     s.vectorSize,
		DistanceMetric: s.metric,
	}

	data, status, err := s.doRequest(ctx, http.MethodGet, "/collections/"+s.collection, nil)
	if status == http.StatusNotFound {
		return info, nil
	}
	if err != nil {
		return domain.CollectionInfo{}, err
	}
	var collection struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size     int    `json:"size"`
						Distance string `json:"distance"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &collection); err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("%w: decode collection response: %v", domain.ErrBackend, err)
	}
	if collection.Result.Config.Params.Vectors.Size > 0 {
		info.VectorSize = collection.Result.Config.Params.Vectors.Size
	}
	if metric, ok := metricFromDistance(collection.Result.Config.Params.Vectors.Distance); ok {
		info.DistanceMetric = metric
	}

	data, _, err = s.doRequest(ctx, http.MethodPost, "/collections/"+s.collection+"/points/count",
		map[string]any{"exact": true})
	if err != nil {
		return domain.CollectionInfo{}, err
	}
	var count struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &count); err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("%w: decode count response: %v", domain.ErrBackend, err)
	}
	info.Count = count.Result.Count
	return info, nil
}

// DeleteCollection drops the collection. The next write recreates it
// with the configured vector parameters.
func (s *Store) DeleteCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, status, err := s.doRequest(ctx, http.MethodDelete, "/collections/"+s.collection, nil)
	if err != nil && status != http.StatusNotFound {
		return err
	}
	s.ensured = false
	s.log.Debug("deleted qdrant collection %s", s.collection)
	return nil
}

// scoreKind declares the convention of Qdrant's score field: for
// Euclid it is a distance, for Cosine and Dot a similarity.
func (s *Store) scoreKind() domain.ScoreKind {
	if s.metric == domain.MetricEuclidean {
		return domain.ScoreDistance
	}
	return domain.ScoreSimilarity
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
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: qdrant request failed: %v", domain.ErrConnection, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, resp.StatusCode, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, resp.StatusCode, fmt.Errorf("%w: qdrant rejected credentials (status %d)", domain.ErrConnection, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, fmt.Errorf("%w: qdrant %s %s", domain.ErrNotFound, method, path)
	default:
		return nil, resp.StatusCode, fmt.Errorf("%w: qdrant status %d: %s",
			domain.ErrBackend, resp.StatusCode, strings.TrimSpace(string(data)))
	}
}

// pointID derives the stable UUID Qdrant stores for a logical record
// ID.
func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func buildPayload(id, text string, meta domain.Metadata) map[string]any {
	preview := meta.Preview
	if preview == "" {
		preview = domain.Preview(text)
	}
	payload := map[string]any{
		"id":              id,
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
		payload["extra"] = meta.Extra
	}
	return payload
}

func parsePayload(raw json.RawMessage) (domain.QueryMatch, error) {
	if len(raw) == 0 {
		return domain.QueryMatch{}, nil
	}
	var p struct {
		ID             string            `json:"id"`
		Content        string            `json:"content"`
		Filename       string            `json:"filename"`
		FilePath       string            `json:"file_path"`
		FileType       string            `json:"file_type"`
		ChunkID        int               `json:"chunk_id"`
		ChunkText      string            `json:"chunk_text"`
		FileSize       int64             `json:"file_size"`
		CharacterCount int               `json:"character_count"`
		Extra          map[string]string `json:"extra"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.QueryMatch{}, err
	}
	return domain.QueryMatch{
		ID:   p.ID,
		Text: p.Content,
		Metadata: domain.Metadata{
			Filename:       p.Filename,
			SourcePath:     p.FilePath,
			FileType:       p.FileType,
			FileSize:       p.FileSize,
			CharacterCount: p.CharacterCount,
			ChunkIndex:     p.ChunkID,
			Preview:        p.ChunkText,
			Extra:          p.Extra,
		},
	}, nil
}

func distanceName(m domain.DistanceMetric) string {
	switch m {
	case domain.MetricEuclidean:
		return "Euclid"
	case domain.MetricDot:
		return "Dot"
	default:
		return "Cosine"
	}
}

func metricFromDistance(name string) (domain.DistanceMetric, bool) {
	switch strings.ToLower(name) {
	case "cosine":
		return domain.MetricCosine, true
	case "euclid":
		return domain.MetricEuclidean, true
	case "dot":
		return domain.MetricDot, true
	}
	return "", false
}

func validateParallel(embeddings [][]float32, texts []string, metadatas []domain.Metadata, ids []string) error {
	n := len(ids)
	if len(embeddings) != n || len(texts) != n || len(metadatas) != n {
		return fmt.Errorf("%w: mismatched argument lengths: %d embeddings, %d texts, %d metadatas, %d ids",
			domain.ErrInvalidArgument, len(embeddings), len(texts), len(metadatas), n)
	}
	return nil
}
