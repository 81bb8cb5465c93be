package storage

import (
	"context"
	"sync"
	"time"

	"github.com/CreativeUnicorns/sharedprefs"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This is useful for testing or for preferences that need not survive a restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]map[string]*sharedprefs.Entry // namespace -> key -> Entry
}

// NewMemoryStorage creates a new instance of MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]map[string]*sharedprefs.Entry),
	}
}

// Get retrieves an entry by namespace and key.
// It returns sharedprefs.ErrNotFound if the entry does not exist.
func (s *MemoryStorage) Get(_ context.Context, namespace, key string) (*sharedprefs.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[namespace][key]
	if !ok {
		return nil, sharedprefs.ErrNotFound
	}
	return entry.Clone(), nil
}

// Set stores a copy of entry.
func (s *MemoryStorage) Set(_ context.Context, entry *sharedprefs.Entry) error {
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
	s.entries[entry.Namespace][entry.Key] = stored
	return nil
}

// Delete removes an entry. It returns sharedprefs.ErrNotFound if the entry does not exist.
func (s *MemoryStorage) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.entries[namespace]
	if !ok {
		return sharedprefs.ErrNotFound
	}
	if _, ok := entries[key]; !ok {
		return sharedprefs.ErrNotFound
	}

	delete(entries, key)
	if len(entries) == 0 {
		delete(s.entries, namespace)
	}
	return nil
}

// GetAll returns copies of every entry in namespace.
func (s *MemoryStorage) GetAll(_ context.Context, namespace string) (map[string]*sharedprefs.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[namespace]
	out := make(map[string]*sharedprefs.Entry, len(entries))
	for k, v := range entries {
		out[k] = v.Clone()
	}
	return out, nil
}

// Close is a no-op for MemoryStorage as there are no external resources to release.
func (s *MemoryStorage) Close() error {
	return nil
}
