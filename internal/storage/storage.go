// Package storage persists the configuration and a local cache of the last
// snapshot fetched from the backend.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nikbrunner/tcm/internal/model"
)

// Storage persists the last snapshot.
type Storage interface {
	Load() (*model.Snapshot, error)
	Save(snap *model.Snapshot) error
}

// JSONStorage implements Storage using a JSON file. It is safe for
// concurrent use.
type JSONStorage struct {
	mu   sync.Mutex
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the snapshot from the JSON file.
// Returns an empty snapshot if the file doesn't exist.
func (s *JSONStorage) Load() (*model.Snapshot, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewSnapshot(), nil
		}
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	// Ensure fields are not nil
	if snap.Entries == nil {
		snap.Entries = []model.Entry{}
	}
	if snap.Structure == nil {
		snap.Structure = model.FileStructure{}
	}

	return &snap, nil
}

// Save writes the snapshot to the JSON file.
// Creates the directory if it doesn't exist. The file is replaced in one
// rename, so readers never see a partial write.
func (s *JSONStorage) Save(snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// OpenStorage opens the cache at path. Files ending in .db or .sqlite use
// SQLite, anything else JSON.
func OpenStorage(path string) (Storage, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStorage(path)
	default:
		return NewJSONStorage(path), nil
	}
}

// Close releases s if it holds resources.
func Close(s Storage) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
