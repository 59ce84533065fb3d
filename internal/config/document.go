package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of .codeindex.yaml, decoded directly
// with yaml.v3 rather than through viper's internal unmarshaler, so the
// file's structure is explicit and versionable independent of whatever
// flag-binding library the CLI uses.
type Document struct {
	Enabled bool `yaml:"enabled"`

	Embedder struct {
		Provider  string `yaml:"provider"`
		Model     string `yaml:"model"`
		Endpoint  string `yaml:"endpoint"`
		APIKey    string `yaml:"apiKey"`
		Dimension *int   `yaml:"dimension"`
	} `yaml:"embedder"`

	VectorStore struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"apiKey"`
	} `yaml:"vectorStore"`

	Search struct {
		MinScore float64 `yaml:"minScore"`
	} `yaml:"search"`
}

// LoadDocument reads and decodes the YAML config document at path. A
// missing file is not an error: it yields the zero Document, so a
// workspace with no config file simply has nothing to override.
func LoadDocument(path string) (Document, error) {
	var doc Document

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read config document %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse config document %s: %w", path, err)
	}

	return doc, nil
}

// Snapshot converts the decoded document into a Snapshot, the shape the
// controller diffs.
func (d Document) Snapshot() Snapshot {
	minScore := d.Search.MinScore
	if minScore == 0 {
		minScore = DefaultSearchMinScore
	}

	return Snapshot{
		Enabled:           d.Enabled,
		EmbedderProvider:  d.Embedder.Provider,
		ModelID:           d.Embedder.Model,
		EmbedderEndpoint:  d.Embedder.Endpoint,
		EmbedderAPIKey:    d.Embedder.APIKey,
		EmbedderDimension: d.Embedder.Dimension,
		VectorStoreURL:    d.VectorStore.URL,
		VectorStoreAPIKey: d.VectorStore.APIKey,
		SearchMinScore:    minScore,
	}
}
