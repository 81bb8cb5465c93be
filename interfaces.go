// Package sharedprefs defines interfaces for storage, caching, and encryption used by the preference store.
package sharedprefs

import (
	"context"
	"time"
)

// Storage defines the methods required for a storage backend.
// Get and Delete return ErrNotFound for a key that does not exist.
type Storage interface {
	Get(ctx context.Context, namespace, key string) (*Entry, error)
	Set(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, namespace, key string) error
	GetAll(ctx context.Context, namespace string) (map[string]*Entry, error)
	Close() error
}

// Cache defines the methods required for a caching backend.
// Get returns ErrNotFound on a miss or an expired key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Encryptor seals and opens string values for storage at rest.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
