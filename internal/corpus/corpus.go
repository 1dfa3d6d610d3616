// Package corpus loads, validates and builds practice sentence collections.
package corpus

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/verte-zerg/mojido/internal/model"
)

//go:embed default.json
var defaultCorpus []byte

//go:embed schema.json
var schemaDoc []byte

const schemaURL = "schema://mojido/corpus.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	errSchema      error
)

func corpusSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaDoc))
		if err != nil {
			errSchema = fmt.Errorf("failed to parse corpus schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			errSchema = fmt.Errorf("failed to add corpus schema: %w", err)
			return
		}
		compiledSchema, errSchema = c.Compile(schemaURL)
	})
	return compiledSchema, errSchema
}

// Default returns the built-in corpus.
func Default() ([]model.Sentence, error) {
	return Parse(bytes.NewReader(defaultCorpus))
}

// Load reads a corpus file. An empty path selects the built-in corpus.
func Load(path string) ([]model.Sentence, error) {
	if path == "" {
		return Default()
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only corpus.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse validates a JSON corpus against the schema and decodes it.
func Parse(r io.Reader) ([]model.Sentence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid corpus JSON: %w", err)
	}
	schema, err := corpusSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("corpus schema validation failed: %w", err)
	}

	var sentences []model.Sentence
	if err := json.Unmarshal(data, &sentences); err != nil {
		return nil, fmt.Errorf("failed to decode corpus: %w", err)
	}
	seen := make(map[string]struct{}, len(sentences))
	for _, s := range sentences {
		if _, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("duplicate sentence id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return sentences, nil
}

// Write stores sentences as indented JSON, replacing path atomically.
func Write(path string, sentences []model.Sentence) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create corpus dir: %w", err)
	}
	data, err := json.MarshalIndent(sentences, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}
	data = append(data, '\n')

	tmpFile, err := os.CreateTemp(dir, "corpus-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp corpus: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp corpus: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move corpus into place: %w", err)
	}
	return nil
}
