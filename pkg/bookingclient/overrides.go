package bookingclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// OverrideStore persists locally pruned dates between runs.
type OverrideStore interface {
	Load() (Snapshot, error)
	Save(s Snapshot) error
	Clear() error
}

// FileOverrideStore keeps overrides in a JSON file.
type FileOverrideStore struct {
	path string
	mu   sync.Mutex
}

// NewFileOverrideStore stores overrides at path. The file is created on first Save.
func NewFileOverrideStore(path string) *FileOverrideStore {
	return &FileOverrideStore{path: path}
}

// Load returns the stored overrides; a missing file means none.
func (f *FileOverrideStore) Load() (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt override file %s: %w", f.path, err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}

// Save replaces the stored overrides atomically.
func (f *FileOverrideStore) Save(s Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".overrides-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// Clear removes the stored overrides.
func (f *FileOverrideStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
