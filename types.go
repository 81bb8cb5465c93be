// Package sharedprefs defines the core types used by the preference store.
package sharedprefs

import (
	"encoding/json"
	"slices"
	"time"
)

// Entry is a single stored preference as persisted by a Storage backend.
type Entry struct {
	// Namespace names the preference store instance the entry belongs to.
	Namespace string `json:"namespace"`
	// Key identifies the preference within its namespace.
	Key string `json:"key"`
	// Kind is the native type Value is held as.
	Kind Kind `json:"kind"`
	// Value holds bool, float32, int32, int64, string or sorted []string, matching Kind.
	Value any `json:"value"`
	// UpdatedAt records when the value was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON encodes an entry the way UnmarshalJSON reads it back, including
// float values that are not finite.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Namespace string    `json:"namespace"`
		Key       string    `json:"key"`
		Kind      Kind      `json:"kind"`
		Value     any       `json:"value"`
		UpdatedAt time.Time `json:"updated_at"`
	}{
		Namespace: e.Namespace,
		Key:       e.Key,
		Kind:      e.Kind,
		Value:     jsonValue(e.Kind, e.Value),
		UpdatedAt: e.UpdatedAt,
	})
}

// UnmarshalJSON decodes an entry and restores Value to the native Go type of its Kind.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Namespace string          `json:"namespace"`
		Key       string          `json:"key"`
		Kind      Kind            `json:"kind"`
		Value     json.RawMessage `json:"value"`
		UpdatedAt time.Time       `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value, err := DecodeValue(raw.Kind, raw.Value)
	if err != nil {
		return err
	}
	*e = Entry{
		Namespace: raw.Namespace,
		Key:       raw.Key,
		Kind:      raw.Kind,
		Value:     value,
		UpdatedAt: raw.UpdatedAt,
	}
	return nil
}

// Clone returns a copy that shares no mutable state with e.
func (e *Entry) Clone() *Entry {
	c := *e
	if set, ok := e.Value.([]string); ok {
		c.Value = slices.Clone(set)
	}
	return &c
}

// Config holds the internal configuration for a Manager instance.
// It is populated by applying functional Options passed to New.
type Config struct {
	// storage is the persistence backend; required.
	storage Storage
	// cache is the optional read cache in front of storage.
	cache Cache
	// encryptor, when set, seals cached entries.
	encryptor Encryptor
	// cacheTTL bounds how long cached entries live.
	cacheTTL time.Duration
	// logger receives commit and cache diagnostics.
	logger Logger
	// queueSize is the capacity of the asynchronous commit queue.
	queueSize int
}

// Option defines the signature for a functional option that configures a Manager.
type Option func(*Config)

// WithStorage sets the Storage backend the Manager commits to. It is mandatory.
func WithStorage(s Storage) Option {
	return func(c *Config) {
		c.storage = s
	}
}

// WithCache sets an optional Cache consulted before the Storage backend on reads.
func WithCache(cache Cache) Option {
	return func(c *Config) {
		c.cache = cache
	}
}

// WithCacheEncryptor seals every entry written to the cache with e. Use it together
// with an encrypting Storage so that values are not left in clear text in a shared cache.
func WithCacheEncryptor(e Encryptor) Option {
	return func(c *Config) {
		c.encryptor = e
	}
}

// WithCacheTTL overrides the default 24 hour lifetime of cached entries.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.cacheTTL = ttl
	}
}

// WithLogger sets the Logger. If not set, NewDefaultLogger is used.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithQueueSize sets the capacity of the commit queue. Writers block once it is full.
func WithQueueSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.queueSize = n
		}
	}
}
