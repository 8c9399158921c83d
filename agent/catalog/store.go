package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Store loads a catalog snapshot. Refresh cadence belongs to the caller;
// a reloaded snapshot replaces the old one wholesale, never in place.
type Store interface {
	Load(ctx context.Context) ([]Item, error)
}

var _ Store = (*FileStore)(nil)

// FileStore reads the catalog from a JSON array on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	return &FileStore{path: trimmed}, nil
}

func (s *FileStore) Load(_ context.Context) ([]Item, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal catalog file %s: %w", s.path, err)
	}
	return items, nil
}
