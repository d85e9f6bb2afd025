package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corpora-labs/corpora-cli/internal/core/domain"
)

const defaultTemplate = `# corpora configuration
#
# API keys are read from the environment variables named by the
# api_key_env fields. Never put keys in this file.

vector_store:
  # sqlite, qdrant or weaviate
  provider: sqlite
  collection_name: documents
  vector_size: 1536
  # cosine, euclidean or dot
  distance_metric: cosine
  # sqlite only
  path: ~/.corpora/corpora.db
  # qdrant / weaviate only
  # url: http://localhost:6333
  # api_key_env: QDRANT_API_KEY
  # weaviate only
  # class_name: Document

embedding:
  # openai or ollama
  provider: openai
  model: text-embedding-3-small
  api_key_env: OPENAI_API_KEY
  dimensions: 1536
  # throttle outgoing requests, 0 disables
  requests_per_second: 0
  timeout_seconds: 30

generation:
  # openai, anthropic or ollama; leave empty to disable the ask command
  provider: openai
  model: gpt-4o-mini
  api_key_env: OPENAI_API_KEY
  max_tokens: 1000
  temperature: 0.7
  timeout_seconds: 120

text_splitter:
  chunk_size: 1000
  chunk_overlap: 200

retrieval:
  top_k: 5

logging:
  verbose: false
`

// WriteDefault creates a commented starter configuration at path,
// creating parent directories as needed. It refuses to overwrite an
// existing file.
func WriteDefault(path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", domain.ErrConfiguration, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrConfiguration, filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(defaultTemplate), 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrConfiguration, path, err)
	}
	return nil
}
