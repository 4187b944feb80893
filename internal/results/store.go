// Package results persists prediction results.
//
// Each attempted question becomes one JSON file named after the question
// ID. The flat one-file-per-question layout makes runs resumable: on
// startup the runner skips every question that already has a file.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hle-eval/hle/internal/api"
)

// Store reads and writes result files in a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if
// needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the results directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the result for one question to <dir>/<id>.json.
//
// The write goes through a temp file and rename so a crash mid-write
// never leaves a truncated result that would be skipped on resume.
func (s *Store) Save(result *api.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result %s: %w", result.ID, err)
	}

	final := filepath.Join(s.dir, result.ID+".json")
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result %s: %w", result.ID, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to finalize result %s: %w", result.ID, err)
	}
	return nil
}

// ExistingIDs returns the set of question IDs that already have a saved
// result. A missing directory yields an empty set.
func (s *Store) ExistingIDs() (map[string]bool, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	ids := make(map[string]bool, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids[strings.TrimSuffix(name, ".json")] = true
	}
	return ids, nil
}

// LoadAll reads every saved result, sorted by question ID.
//
// Unreadable or malformed files are returned as an error rather than
// skipped, since a summary over partial data would be misleading.
func (s *Store) LoadAll() ([]api.Result, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read results directory: %w", err)
	}

	var results []api.Result
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read result file %s: %w", name, err)
		}

		var result api.Result
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to parse result file %s: %w", name, err)
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})

	return results, nil
}
