package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/CreativeUnicorns/sharedprefs"
)

// FileStorage keeps every namespace in a single JSON document on disk.
// The whole document is rewritten on each mutation via a temp file and rename,
// so a crash leaves either the old or the new contents.
type FileStorage struct {
	mu      sync.RWMutex
	path    string
	entries map[string]map[string]*sharedprefs.Entry
}

// NewFileStorage opens the document at path. A missing file is an empty store.
func NewFileStorage(path string) (*FileStorage, error) {
	s := &FileStorage{
		path:    path,
		entries: make(map[string]map[string]*sharedprefs.Entry),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultFilePath returns $XDG_CONFIG_HOME/sharedprefs/preferences.json,
// falling back to ~/.config and then the working directory.
func DefaultFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "sharedprefs", "preferences.json")
}

func (s *FileStorage) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("file: failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return fmt.Errorf("%w: file: failed to parse %s: %v", sharedprefs.ErrSerialization, s.path, err)
	}
	for ns, entries := range s.entries {
		for key, entry := range entries {
			entry.Namespace, entry.Key = ns, key
		}
	}
	return nil
}

// save must be called with mu held for writing.
func (s *FileStorage) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("file: creating directory: %w", err)
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: file: %v", sharedprefs.ErrSerialization, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".preferences-*.json")
	if err != nil {
		return fmt.Errorf("file: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file: writing temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("file: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("file: replacing %s: %w", s.path, err)
	}
	return nil
}

// Get retrieves an entry by namespace and key.
func (s *FileStorage) Get(_ context.Context, namespace, key string) (*sharedprefs.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[namespace][key]
	if !ok {
		return nil, sharedprefs.ErrNotFound
	}
	return entry.Clone(), nil
}

// Set stores entry and rewrites the document.
func (s *FileStorage) Set(_ context.Context, entry *sharedprefs.Entry) error {
	if err := sharedprefs.ValidateEntry(entry); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.Namespace]; !ok {
		s.entries[entry.Namespace] = make(map[string]*sharedprefs.Entry)
	}
	stored := entry.Clone()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now()
	}

	previous, existed := s.entries[entry.Namespace][entry.Key]
	s.entries[entry.Namespace][entry.Key] = stored
	if err := s.save(); err != nil {
		if existed {
			s.entries[entry.Namespace][entry.Key] = previous
		} else {
			delete(s.entries[entry.Namespace], entry.Key)
		}
		return err
	}
	return nil
}

// Delete removes an entry and rewrites the document.
func (s *FileStorage) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[namespace]
	previous, ok := entries[key]
	if !ok {
		return sharedprefs.ErrNotFound
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(s.entries, namespace)
	}
	if err := s.save(); err != nil {
		entries[key] = previous
		s.entries[namespace] = entries
		return err
	}
	return nil
}

// GetAll returns copies of every entry in namespace.
func (s *FileStorage) GetAll(_ context.Context, namespace string) (map[string]*sharedprefs.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*sharedprefs.Entry, len(s.entries[namespace]))
	for k, v := range s.entries[namespace] {
		out[k] = v.Clone()
	}
	return out, nil
}

// Close is a no-op; every mutation is already on disk.
func (s *FileStorage) Close() error {
	return nil
}
