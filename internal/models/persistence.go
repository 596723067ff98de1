package models

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store reads and writes the engine's serialized state as one opaque
// document. Load returns (nil, nil) when no prior state exists.
type Store interface {
	Load() (*State, error)
	Save(*State) error
}

const snapshotFile = "snapshot.yaml"

// FileStore persists the snapshot as a single yaml document in a
// directory. A malformed document is discarded rather than surfaced,
// so startup never fails on corrupt state.
type FileStore struct {
	Dir    string
	Logger *log.Logger
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.New(os.Stderr, "store: ", log.LstdFlags)
	}
	return &FileStore{Dir: dir, Logger: logger}
}

func (fs *FileStore) path() string {
	return filepath.Join(fs.Dir, snapshotFile)
}

// Load reads the snapshot. Missing file means no prior state; a
// document that fails to parse is treated the same way.
func (fs *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(fs.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		fs.Logger.Printf("discarding malformed snapshot %s: %v", fs.path(), err)
		return nil, nil
	}
	st.Normalize()
	return &st, nil
}

// Save writes the snapshot atomically (write to temp file, rename).
func (fs *FileStore) Save(st *State) error {
	if err := os.MkdirAll(fs.Dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}

	tmp := fs.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path())
}

// Reset removes any persisted snapshot.
func (fs *FileStore) Reset() error {
	err := os.Remove(fs.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
