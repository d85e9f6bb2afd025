// Package config loads and validates the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

// ErrNotFound indicates the configuration file does not exist yet.
var ErrNotFound = errors.New("config file not found")

// Default locations under the user's home directory.
const (
	DefaultDirName  = ".corpora"
	DefaultFileName = "config.yaml"
)

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Provider       string `yaml:"provider"`
	CollectionName string `yaml:"collection_name"`
	VectorSize     int    `yaml:"vector_size"`
	DistanceMetric string `yaml:"distance_metric"`

	// Path is the database file location (sqlite only).
	Path string `yaml:"path"`

	// URL is the server address (qdrant and weaviate).
	URL string `yaml:"url"`

	// APIKeyEnv names the environment variable holding the backend
	// credential. The key itself never lives in the file.
	APIKeyEnv string `yaml:"api_key_env"`

	// ClassName is the schema class (weaviate only).
	ClassName string `yaml:"class_name"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Dimensions        int     `yaml:"dimensions"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
}

// GenerationConfig selects and configures the answer generation
// provider. An empty provider disables generation; retrieval keeps
// working without it.
type GenerationConfig struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// TextSplitterConfig configures chunking.
type TextSplitterConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrievalConfig configures the answer path.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// LoggingConfig configures diagnostic output.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Config is the root configuration structure.
type Config struct {
	VectorStore  VectorStoreConfig  `yaml:"vector_store"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	Generation   GenerationConfig   `yaml:"generation"`
	TextSplitter TextSplitterConfig `yaml:"text_splitter"`
	Retrieval    RetrievalConfig    `yaml:"retrieval"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// DefaultPath returns ~/.corpora/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolve home directory: %v", domain.ErrConfiguration, err)
	}
	return filepath.Join(home, DefaultDirName, DefaultFileName), nil
}

// Load reads and validates the configuration. An empty path means the
// default location. A missing file returns ErrNotFound so callers can
// point the user at init.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills unset fields with working values.
func (c *Config) applyDefaults() {
	if c.VectorStore.Provider == "" {
		c.VectorStore.Provider = "sqlite"
	}
	if c.VectorStore.CollectionName == "" {
		c.VectorStore.CollectionName = "documents"
	}
	if c.VectorStore.VectorSize == 0 {
		c.VectorStore.VectorSize = 1536
	}
	if c.VectorStore.DistanceMetric == "" {
		c.VectorStore.DistanceMetric = string(domain.MetricCosine)
	}
	switch c.VectorStore.Provider {
	case "sqlite":
		if c.VectorStore.Path == "" {
			c.VectorStore.Path = "~/" + DefaultDirName + "/corpora.db"
		}
	case "qdrant":
		if c.VectorStore.URL == "" {
			c.VectorStore.URL = "http://localhost:6333"
		}
		if c.VectorStore.APIKeyEnv == "" {
			c.VectorStore.APIKeyEnv = "QDRANT_API_KEY"
		}
	case "weaviate":
		if c.VectorStore.URL == "" {
			c.VectorStore.URL = "http://localhost:8080"
		}
		if c.VectorStore.APIKeyEnv == "" {
			c.VectorStore.APIKeyEnv = "WEAVIATE_API_KEY"
		}
		if c.VectorStore.ClassName == "" {
			c.VectorStore.ClassName = "Document"
		}
	}
	c.VectorStore.Path = expandHome(c.VectorStore.Path)

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Provider == "openai" && c.Embedding.APIKeyEnv == "" {
		c.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = c.VectorStore.VectorSize
	}
	if c.Embedding.TimeoutSeconds == 0 {
		c.Embedding.TimeoutSeconds = 30
	}

	if c.Generation.Provider != "" {
		if c.Generation.APIKeyEnv == "" {
			switch c.Generation.Provider {
			case "anthropic":
				c.Generation.APIKeyEnv = "ANTHROPIC_API_KEY"
			case "openai":
				c.Generation.APIKeyEnv = "OPENAI_API_KEY"
			}
		}
		if c.Generation.MaxTokens == 0 {
			c.Generation.MaxTokens = 1000
		}
		if c.Generation.Temperature == 0 {
			c.Generation.Temperature = 0.7
		}
		if c.Generation.TimeoutSeconds == 0 {
			c.Generation.TimeoutSeconds = 120
		}
	}

	if c.TextSplitter.ChunkSize == 0 {
		c.TextSplitter.ChunkSize = 1000
	}
	if c.TextSplitter.ChunkOverlap == 0 {
		c.TextSplitter.ChunkOverlap = 200
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 5
	}
}

// Validate rejects configurations that cannot work before any backend
// is dialled.
func (c *Config) Validate() error {
	switch c.VectorStore.Provider {
	case "sqlite", "qdrant", "weaviate":
	default:
		return fmt.Errorf("%w: unknown vector store provider %q", domain.ErrConfiguration, c.VectorStore.Provider)
	}
	if c.VectorStore.VectorSize <= 0 {
		return fmt.Errorf("%w: vector_size must be positive, got %d", domain.ErrConfiguration, c.VectorStore.VectorSize)
	}
	if _, err := domain.ParseDistanceMetric(c.VectorStore.DistanceMetric); err != nil {
		return fmt.Errorf("%w: unknown distance_metric %q", domain.ErrConfiguration, c.VectorStore.DistanceMetric)
	}

	switch c.Embedding.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, c.Embedding.Provider)
	}
	if c.Embedding.Dimensions != c.VectorStore.VectorSize {
		return fmt.Errorf("%w: embedding dimensions %d do not match vector_size %d",
			domain.ErrConfiguration, c.Embedding.Dimensions, c.VectorStore.VectorSize)
	}

	switch c.Generation.Provider {
	case "", "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("%w: unknown generation provider %q", domain.ErrConfiguration, c.Generation.Provider)
	}

	if c.TextSplitter.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrConfiguration, c.TextSplitter.ChunkSize)
	}
	if c.TextSplitter.ChunkOverlap < 0 || c.TextSplitter.ChunkOverlap >= c.TextSplitter.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be non-negative and smaller than chunk_size %d",
			domain.ErrConfiguration, c.TextSplitter.ChunkOverlap, c.TextSplitter.ChunkSize)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrConfiguration, c.Retrieval.TopK)
	}
	return nil
}

// APIKey resolves the credential named by env. Empty env means no
// credential is expected.
func APIKey(env string) string {
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
