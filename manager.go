// manager.go
package sharedprefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultNamespace is the store instance returned by Manager.Default.
	DefaultNamespace = "default"

	defaultCacheTTL  = 24 * time.Hour
	defaultQueueSize = 256
)

// ChangeListener is called after a write or removal becomes visible in the process.
type ChangeListener func(namespace, key string)

type entryKey struct {
	namespace string
	key       string
}

// pendingWrite is a write that is visible to readers but may not be committed yet.
// A nil entry marks a removal.
type pendingWrite struct {
	entry *Entry
	seq   uint64
}

type commitJob struct {
	key     entryKey
	write   pendingWrite
	barrier chan error
}

// Manager is the process-wide handle on a preference store. Writes are applied to an
// in-memory overlay immediately and committed to Storage in issue order by a single
// background goroutine.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	pending   map[entryKey]pendingWrite
	seq       uint64
	closed    bool
	commitErr error

	// enqueueMu keeps queue order equal to sequence order.
	enqueueMu sync.Mutex
	queue     chan commitJob
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	listenerMu   sync.RWMutex
	listeners    map[uint64]ChangeListener
	nextListener uint64
}

// New creates a Manager and starts its committer. WithStorage is required.
func New(opts ...Option) (*Manager, error) {
	cfg := &Config{
		cacheTTL:  defaultCacheTTL,
		queueSize: defaultQueueSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.storage == nil {
		return nil, fmt.Errorf("%w: no storage configured", ErrStorageUnavailable)
	}
	if cfg.logger == nil {
		cfg.logger = NewDefaultLogger()
	}

	m := &Manager{
		config:    cfg,
		pending:   make(map[entryKey]pendingWrite),
		queue:     make(chan commitJob, cfg.queueSize),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		listeners: make(map[uint64]ChangeListener),
	}
	go m.commitLoop()
	return m, nil
}

// Preferences returns the named store instance. An empty name selects DefaultNamespace.
// Handles are cheap; callers may create one per call site.
func (m *Manager) Preferences(name string) *Preferences {
	if name == "" {
		name = DefaultNamespace
	}
	return &Preferences{manager: m, name: name}
}

// Default returns the DefaultNamespace store instance.
func (m *Manager) Default() *Preferences {
	return m.Preferences(DefaultNamespace)
}

// OnChange registers l and returns a function that unregisters it.
func (m *Manager) OnChange(l ChangeListener) func() {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()

	id := m.nextListener
	m.nextListener++
	m.listeners[id] = l

	return func() {
		m.listenerMu.Lock()
		defer m.listenerMu.Unlock()
		delete(m.listeners, id)
	}
}

// Flush blocks until every write issued before the call has reached Storage.
// It returns the first commit error recorded since the previous Flush.
func (m *Manager) Flush(ctx context.Context) error {
	m.enqueueMu.Lock()
	if m.isClosed() {
		m.enqueueMu.Unlock()
		return ErrClosed
	}
	barrier := make(chan error, 1)
	m.queue <- commitJob{barrier: barrier}
	m.enqueueMu.Unlock()

	select {
	case err := <-barrier:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further writes, waits for queued commits, and closes the cache and storage.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.enqueueMu.Lock()
		barrier := make(chan error, 1)
		m.queue <- commitJob{barrier: barrier}
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		m.enqueueMu.Unlock()

		flushErr := <-barrier
		close(m.stop)
		<-m.done

		errs := []error{flushErr}
		if m.config.cache != nil {
			errs = append(errs, m.config.cache.Close())
		}
		errs = append(errs, m.config.storage.Close())
		m.closeErr = errors.Join(errs...)
		m.config.logger.Info("Preference manager closed")
	})
	return m.closeErr
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// get returns the freshest entry visible to this process.
func (m *Manager) get(ctx context.Context, namespace, key string) (*Entry, error) {
	k := entryKey{namespace: namespace, key: key}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrClosed
	}
	if pw, ok := m.pending[k]; ok {
		m.mu.RUnlock()
		if pw.entry == nil {
			return nil, ErrNotFound
		}
		return pw.entry.Clone(), nil
	}
	snapshot := m.seq
	m.mu.RUnlock()

	if m.config.cache != nil {
		if entry, err := m.getFromCache(ctx, namespace, key); err == nil {
			return entry, nil
		}
	}

	entry, err := m.config.storage.Get(ctx, namespace, key)
	if err != nil {
		return nil, err
	}

	if m.config.cache != nil {
		m.populateCache(ctx, entry, snapshot)
	}
	return entry, nil
}

// getAll merges committed entries of namespace with the pending overlay.
func (m *Manager) getAll(ctx context.Context, namespace string) (map[string]*Entry, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}

	entries, err := m.config.storage.GetAll(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[string]*Entry)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, pw := range m.pending {
		if k.namespace != namespace {
			continue
		}
		if pw.entry == nil {
			delete(entries, k.key)
			continue
		}
		entries[k.key] = pw.entry.Clone()
	}
	return entries, nil
}

// put makes entry visible and queues it for commit. A nil entry value removes key.
func (m *Manager) put(namespace, key string, entry *Entry) error {
	k := entryKey{namespace: namespace, key: key}

	m.enqueueMu.Lock()
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.enqueueMu.Unlock()
		return ErrClosed
	}
	m.seq++
	pw := pendingWrite{entry: entry, seq: m.seq}
	m.pending[k] = pw
	m.mu.Unlock()

	m.queue <- commitJob{key: k, write: pw}
	m.enqueueMu.Unlock()

	m.notify(namespace, key)
	return nil
}

func (m *Manager) notify(namespace, key string) {
	m.listenerMu.RLock()
	listeners := make([]ChangeListener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.listenerMu.RUnlock()

	for _, l := range listeners {
		l(namespace, key)
	}
}

func (m *Manager) commitLoop() {
	defer close(m.done)
	for {
		select {
		case job := <-m.queue:
			m.process(job)
		case <-m.stop:
			for {
				select {
				case job := <-m.queue:
					m.process(job)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) process(job commitJob) {
	if job.barrier != nil {
		m.mu.Lock()
		err := m.commitErr
		m.commitErr = nil
		m.mu.Unlock()
		job.barrier <- err
		return
	}

	err := m.commit(context.Background(), job)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		// The overlay keeps the write so this process still observes it.
		if m.commitErr == nil {
			m.commitErr = err
		}
		return
	}
	if cur, ok := m.pending[job.key]; ok && cur.seq == job.write.seq {
		delete(m.pending, job.key)
	}
}

func (m *Manager) commit(ctx context.Context, job commitJob) error {
	ns, key := job.key.namespace, job.key.key

	if job.write.entry == nil {
		err := m.config.storage.Delete(ctx, ns, key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			m.config.logger.Error("Failed to commit preference removal", "namespace", ns, "key", key, "error", err)
			return fmt.Errorf("removing %s/%s: %w", ns, key, err)
		}
		if m.config.cache != nil {
			m.deleteFromCache(ctx, ns, key)
		}
		m.config.logger.Debug("Committed preference removal", "namespace", ns, "key", key, "seq", job.write.seq)
		return nil
	}

	if err := m.config.storage.Set(ctx, job.write.entry); err != nil {
		m.config.logger.Error("Failed to commit preference", "namespace", ns, "key", key, "error", err)
		return fmt.Errorf("committing %s/%s: %w", ns, key, err)
	}
	if m.config.cache != nil {
		m.setToCache(ctx, job.write.entry)
	}
	m.config.logger.Debug("Committed preference", "namespace", ns, "key", key, "kind", job.write.entry.Kind, "seq", job.write.seq)
	return nil
}

func cacheKey(namespace, key string) string {
	return fmt.Sprintf("pref:%s:%s", namespace, key)
}

func (m *Manager) getFromCache(ctx context.Context, namespace, key string) (*Entry, error) {
	data, err := m.config.cache.Get(ctx, cacheKey(namespace, key))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.config.logger.Warn("Failed to read preference from cache", "key", key, "error", err)
		}
		return nil, err
	}
	if m.config.encryptor != nil {
		plain, err := m.config.encryptor.Decrypt(string(data))
		if err != nil {
			m.config.logger.Warn("Discarding unreadable cached preference", "key", key, "error", err)
			return nil, err
		}
		data = []byte(plain)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		m.config.logger.Warn("Discarding undecodable cached preference", "key", key, "error", err)
		return nil, err
	}
	return &entry, nil
}

// populateCache stores an entry read from Storage unless a write was issued since
// snapshot; that write's commit owns the cache slot.
func (m *Manager) populateCache(ctx context.Context, entry *Entry, snapshot uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.seq != snapshot {
		return
	}
	m.setToCache(ctx, entry)
}

func (m *Manager) setToCache(ctx context.Context, entry *Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		m.config.logger.Error("Failed to marshal preference for cache", "error", err)
		return
	}
	if m.config.encryptor != nil {
		sealed, err := m.config.encryptor.Encrypt(string(data))
		if err != nil {
			m.config.logger.Error("Failed to seal preference for cache", "error", err)
			return
		}
		data = []byte(sealed)
	}

	if err := m.config.cache.Set(ctx, cacheKey(entry.Namespace, entry.Key), data, m.config.cacheTTL); err != nil {
		m.config.logger.Error("Failed to cache preference", "error", err)
	}
}

func (m *Manager) deleteFromCache(ctx context.Context, namespace, key string) {
	if err := m.config.cache.Delete(ctx, cacheKey(namespace, key)); err != nil {
		m.config.logger.Error("Failed to delete preference from cache", "error", err)
	}
}
