// Package yamlfile loads knowledge-base entries from YAML documents, either the
// embedded seed or a file on disk.
package yamlfile

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

//go:embed seed.yaml
var seedYAML []byte

type document struct {
	Entries []domain.Entry `yaml:"entries"`
}

type Source struct {
	path string
}

// New returns a source reading path. An empty path selects the embedded seed.
func New(path string) *Source {
	return &Source{path: path}
}

func Embedded() *Source {
	return &Source{}
}

func (s *Source) Load(_ context.Context) ([]domain.Entry, error) {
	raw := seedYAML
	name := "embedded seed"
	if s.path != "" {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read knowledge file: %w", err)
		}
		raw = data
		name = s.path
	}
	return Decode(raw, name)
}

// Decode parses a YAML knowledge document. Unknown fields are rejected so that
// typos in curated files fail at startup instead of silently dropping data.
func Decode(raw []byte, name string) ([]domain.Entry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidKnowledgeBase, "decode "+name, err)
	}
	return doc.Entries, nil
}

// Encode renders entries in the same layout Decode accepts.
func Encode(entries []domain.Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document{Entries: entries}); err != nil {
		return nil, fmt.Errorf("encode knowledge yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close yaml encoder: %w", err)
	}
	return buf.Bytes(), nil
}
