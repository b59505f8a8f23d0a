package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Document is an editor settings document: a JSON object mapping setting
// keys to arbitrarily nested values.
type Document map[string]any

// Override is a single key/value pair to merge into a settings document.
// The table of overrides is configuration data, not merger logic.
type Override struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Store reads and writes settings documents. In dry-run mode Save reports
// what would be written without touching the file.
type Store struct {
	logger *slog.Logger
	dryRun bool
}

// NewStore creates a new settings store
func NewStore(logger *slog.Logger, dryRun bool) *Store {
	return &Store{
		logger: logger,
		dryRun: dryRun,
	}
}

// Load reads the settings document at path. A missing file yields an empty
// document; an unreadable file or one that does not parse as a JSON object
// is logged and also yields an empty document. A broken settings file must
// never abort the run.
func (s *Store) Load(path string) Document {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot read settings file, starting from an empty document", "path", path, "error", err)
		}
		return Document{}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("settings file is not a valid JSON object, starting from an empty document", "path", path, "error", err)
		return Document{}
	}
	if doc == nil {
		doc = Document{}
	}

	return doc
}

// Apply merges the overrides into doc in order. Each override replaces any
// prior value for its key; every other key, including nested values, is
// left untouched.
func (s *Store) Apply(doc Document, overrides []Override) {
	for _, o := range overrides {
		if _, exists := doc[o.Key]; exists {
			s.logger.Info("updating setting", "key", o.Key, "value", o.Value)
		} else {
			s.logger.Info("adding setting", "key", o.Key, "value", o.Value)
		}
		doc[o.Key] = o.Value
	}
}

// Save serializes the full document to path, creating the parent directory
// if needed. Dry-run mode skips the write.
func (s *Store) Save(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	if s.dryRun {
		s.logger.Info("[dry-run] would write settings", "path", path, "keys", len(doc))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	s.logger.Info("settings written", "path", path, "keys", len(doc))
	return nil
}
