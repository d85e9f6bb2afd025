// Package sqlite provides the embedded vector store backend.
//
// Records live in a single SQLite database file. Similarity search is a
// brute-force scan over the collection's embeddings, exact rather than
// approximate, sized for collections up to the tens of thousands of
// records.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
	"github.com/corpora-labs/corpora-cli/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-cli/internal/logger"
)

// Provider is the configuration tag selecting this backend.
const Provider = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection      TEXT    NOT NULL,
	id              TEXT    NOT NULL,
	text            TEXT    NOT NULL,
	filename        TEXT    NOT NULL,
	source_path     TEXT    NOT NULL,
	file_type       TEXT    NOT NULL,
	file_size       INTEGER NOT NULL,
	character_count INTEGER NOT NULL,
	chunk_index     INTEGER NOT NULL,
	preview         TEXT    NOT NULL,
	extra           TEXT,
	embedding       BLOB    NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
`

// Config holds the embedded backend settings.
type Config struct {
	// Path is the database file location.
	Path string

	// Collection is the logical collection name.
	Collection string

	// VectorSize is the fixed embedding dimensionality.
	VectorSize int

	// Metric is the distance metric used for scoring.
	Metric domain.DistanceMetric
}

// Store is the embedded vector store.
// It implements the VectorStore port.
type Store struct {
	db         *sql.DB
	collection string
	vectorSize int
	metric     domain.DistanceMetric
	log        *logger.Logger

	// mu serializes writes so a delete/recreate sequence never
	// interleaves a concurrent upsert on the same collection.
	mu sync.Mutex
}

var _ driven.VectorStore = (*Store)(nil)

// New opens (or creates) the database file and ensures the schema.
func New(cfg Config, log *logger.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: sqlite store requires a path", domain.ErrConfiguration)
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
	if log == nil {
		log = logger.Discard()
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("%w: create data directory: %v", domain.ErrConnection, err)
		}
	}

	// WAL mode so queries keep working while a write is in flight.
	db, err := sql.Open("sqlite", cfg.Path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", domain.ErrConnection, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ensure schema: %v", domain.ErrConnection, err)
	}

	log.Debug("sqlite vector store ready: %s (collection %s, %d dims, %s)",
		cfg.Path, cfg.Collection, cfg.VectorSize, cfg.Metric)

	return &Store{
		db:         db,
		collection: cfg.Collection,
		vectorSize: cfg.VectorSize,
		metric:     cfg.Metric,
		log:        log,
	}, nil
}

// AddDocuments upserts one record per id inside a single transaction.
// All validation happens before the first write, so a rejected call
// leaves the collection untouched.
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrBackend, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, text, filename, source_path, file_type,
			file_size, character_count, chunk_index, preview, extra, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			text = excluded.text,
			filename = excluded.filename,
			source_path = excluded.source_path,
			file_type = excluded.file_type,
			file_size = excluded.file_size,
			character_count = excluded.character_count,
			chunk_index = excluded.chunk_index,
			preview = excluded.preview,
			extra = excluded.extra,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("%w: prepare upsert: %v", domain.ErrBackend, err)
	}
	defer stmt.Close()

	for i := range ids {
		extra, err := marshalExtra(metadatas[i].Extra)
		if err != nil {
			return fmt.Errorf("%w: encode extra metadata for %s: %v", domain.ErrBackend, ids[i], err)
		}
		meta := metadatas[i]
		if _, err := stmt.ExecContext(ctx, s.collection, ids[i], texts[i],
			meta.Filename, meta.SourcePath, meta.FileType, meta.FileSize,
			meta.CharacterCount, meta.ChunkIndex, meta.Preview, extra,
			float32SliceToBytes(embeddings[i])); err != nil {
			return fmt.Errorf("%w: upsert record %s: %v", domain.ErrBackend, ids[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit upsert: %v", domain.ErrBackend, err)
	}
	s.log.Debug("upserted %d records into %s", len(ids), s.collection)
	return nil
}

// Query scans every record in the collection, scores it under the
// configured metric and returns the topK best.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int) (domain.QueryResult, error) {
	if topK <= 0 {
		return domain.QueryResult{}, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidArgument, topK)
	}
	if len(embedding) != s.vectorSize {
		return domain.QueryResult{}, fmt.Errorf("%w: query vector has length %d, collection %q expects %d",
			domain.ErrDimensionMismatch, len(embedding), s.collection, s.vectorSize)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, filename, source_path, file_type, file_size,
			character_count, chunk_index, preview, extra, embedding
		FROM records WHERE collection = ?`, s.collection)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: query records: %v", domain.ErrBackend, err)
	}
	defer rows.Close()

	queryNorm := vectorNorm(embedding)

	var matches []domain.QueryMatch
	for rows.Next() {
		var (
			m     domain.QueryMatch
			extra sql.NullString
			blob  []byte
		)
		if err := rows.Scan(&m.ID, &m.Text, &m.Metadata.Filename, &m.Metadata.SourcePath,
			&m.Metadata.FileType, &m.Metadata.FileSize, &m.Metadata.CharacterCount,
			&m.Metadata.ChunkIndex, &m.Metadata.Preview, &extra, &blob); err != nil {
			return domain.QueryResult{}, fmt.Errorf("%w: scan record: %v", domain.ErrBackend, err)
		}
		if m.Metadata.Extra, err = unmarshalExtra(extra); err != nil {
			return domain.QueryResult{}, fmt.Errorf("%w: decode extra metadata for %s: %v", domain.ErrBackend, m.ID, err)
		}
		vec := bytesToFloat32Slice(blob)
		if len(vec) != len(embedding) {
			return domain.QueryResult{}, fmt.Errorf("%w: stored vector %s has length %d, collection %q expects %d",
				domain.ErrDimensionMismatch, m.ID, len(vec), s.collection, s.vectorSize)
		}
		m.Score = s.score(embedding, queryNorm, vec)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: iterate records: %v", domain.ErrBackend, err)
	}

	kind := s.scoreKind()
	sort.SliceStable(matches, func(i, j int) bool {
		if kind == domain.ScoreDistance {
			return matches[i].Score < matches[j].Score
		}
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	return domain.QueryResult{Matches: matches, ScoreKind: kind}, nil
}

// CollectionInfo reports a live count straight from the table.
func (s *Store) CollectionInfo(ctx context.Context) (domain.CollectionInfo, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, s.collection).Scan(&count)
	if err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("%w: count records: %v", domain.ErrBackend, err)
	}
	return domain.CollectionInfo{
		Name:           s.collection,
		Count:          count,
		Provider:       Provider,
		VectorSize:     s.vectorSize,
		DistanceMetric: s.metric,
	}, nil
}

// DeleteCollection removes every record of the collection. The next
// upsert recreates it implicitly, so callers never special-case an
// absent collection.
func (s *Store) DeleteCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ?`, s.collection); err != nil {
		return fmt.Errorf("%w: delete collection %s: %v", domain.ErrBackend, s.collection, err)
	}
	s.log.Debug("deleted collection %s", s.collection)
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// score computes the record's relevance under the configured metric.
func (s *Store) score(query []float32, queryNorm float64, vec []float32) float64 {
	switch s.metric {
	case domain.MetricEuclidean:
		return euclideanDistance(query, vec)
	case domain.MetricDot:
		return dotProduct(query, vec)
	default:
		return cosineSimilarity(query, queryNorm, vec)
	}
}

// scoreKind declares the convention of scores under the configured
// metric: euclidean reports distances, cosine and dot similarities.
func (s *Store) scoreKind() domain.ScoreKind {
	if s.metric == domain.MetricEuclidean {
		return domain.ScoreDistance
	}
	return domain.ScoreSimilarity
}

func validateParallel(embeddings [][]float32, texts []string, metadatas []domain.Metadata, ids []string) error {
	n := len(ids)
	if len(embeddings) != n || len(texts) != n || len(metadatas) != n {
		return fmt.Errorf("%w: mismatched argument lengths: %d embeddings, %d texts, %d metadatas, %d ids",
			domain.ErrInvalidArgument, len(embeddings), len(texts), len(metadatas), n)
	}
	return nil
}

func marshalExtra(extra map[string]string) (sql.NullString, error) {
	if len(extra) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalExtra(extra sql.NullString) (map[string]string, error) {
	if !extra.Valid || extra.String == "" {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(extra.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// cosineSimilarity computes the cosine of the angle between query and
// vec, reusing the query's precomputed norm across the scan.
func cosineSimilarity(query []float32, queryNorm float64, vec []float32) float64 {
	if queryNorm == 0 {
		return 0
	}
	var dot, norm float64
	for i := range query {
		dot += float64(query[i]) * float64(vec[i])
		norm += float64(vec[i]) * float64(vec[i])
	}
	if norm == 0 {
		return 0
	}
	return dot / (queryNorm * math.Sqrt(norm))
}

func dotProduct(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func euclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
