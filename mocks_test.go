package sharedprefs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockStorage implements the Storage interface for testing.
// A non-nil gate blocks every Set and Delete until it is closed, which lets tests
// observe writes that are visible but not yet committed.
type MockStorage struct {
	mu      sync.RWMutex
	data    map[string]map[string]*Entry
	closed  bool
	gate    chan struct{}
	setErr  error
	getErr  error
	history []string
	gets    int
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		data: make(map[string]map[string]*Entry),
	}
}

// Hold makes Set and Delete block until the returned function is called.
func (m *MockStorage) Hold() func() {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gate = gate
	m.mu.Unlock()
	return func() { close(gate) }
}

// FailSets makes subsequent Set calls return err.
func (m *MockStorage) FailSets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

// FailGets makes subsequent Get calls return err.
func (m *MockStorage) FailGets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// History lists committed writes as "ns/key=value" and removals as "ns/key-".
func (m *MockStorage) History() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.history...)
}

// Gets reports how many Get calls reached the storage.
func (m *MockStorage) Gets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}

func (m *MockStorage) wait() {
	m.mu.RLock()
	gate := m.gate
	m.mu.RUnlock()
	if gate != nil {
		<-gate
	}
}

func (m *MockStorage) Get(ctx context.Context, namespace, key string) (*Entry, error) {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++

	if m.closed {
		return nil, ErrStorageUnavailable
	}
	if m.getErr != nil {
		return nil, m.getErr
	}

	if entries, exists := m.data[namespace]; exists {
		if entry, exists := entries[key]; exists {
			return entry.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStorage) Set(ctx context.Context, entry *Entry) error {
	_, _ = ctx.Deadline()
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	if m.setErr != nil {
		return m.setErr
	}

	if _, exists := m.data[entry.Namespace]; !exists {
		m.data[entry.Namespace] = make(map[string]*Entry)
	}
	m.data[entry.Namespace][entry.Key] = entry.Clone()
	m.history = append(m.history, fmt.Sprintf("%s/%s=%v", entry.Namespace, entry.Key, entry.Value))
	return nil
}

func (m *MockStorage) Delete(ctx context.Context, namespace, key string) error {
	_, _ = ctx.Deadline()
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}

	if entries, exists := m.data[namespace]; exists {
		if _, exists := entries[key]; exists {
			delete(entries, key)
			m.history = append(m.history, fmt.Sprintf("%s/%s-", namespace, key))
			return nil
		}
	}
	return ErrNotFound
}

func (m *MockStorage) GetAll(ctx context.Context, namespace string) (map[string]*Entry, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageUnavailable
	}

	result := make(map[string]*Entry)
	for key, entry := range m.data[namespace] {
		result[key] = entry.Clone()
	}
	return result, nil
}

func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// MockCache implements the Cache interface for testing.
type MockCache struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrCacheUnavailable
	}

	value, exists := m.data[key]
	if !exists {
		return nil, ErrNotFound
	}
	return value, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, _ = ctx.Deadline()
	_ = ttl

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *MockCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Raw returns the bytes stored under key.
func (m *MockCache) Raw(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key]
}

func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// MockLogger implements the Logger interface for testing.
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
}

func (m *MockLogger) Debug(msg string, args ...any) { m.record("DEBUG", msg, args...) }
func (m *MockLogger) Info(msg string, args ...any)  { m.record("INFO", msg, args...) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.record("WARN", msg, args...) }
func (m *MockLogger) Error(msg string, args ...any) { m.record("ERROR", msg, args...) }

func (m *MockLogger) SetLevel(level LogLevel) {
	m.record("SET_LEVEL", fmt.Sprint(level))
}

func (m *MockLogger) record(level, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(args) > 0 {
		m.Messages = append(m.Messages, fmt.Sprintf("%s: %s %v", level, msg, args))
		return
	}
	m.Messages = append(m.Messages, fmt.Sprintf("%s: %s", level, msg))
}

func (m *MockLogger) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Messages...)
}
