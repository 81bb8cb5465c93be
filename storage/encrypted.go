package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/CreativeUnicorns/sharedprefs"
)

// EncryptedStorage seals string and string_set values before they reach the
// wrapped backend and opens them on the way back. Other kinds pass through, so
// numeric and boolean preferences stay queryable in the backing store.
type EncryptedStorage struct {
	inner     sharedprefs.Storage
	encryptor sharedprefs.Encryptor
}

// NewEncryptedStorage wraps inner with encryptor.
func NewEncryptedStorage(inner sharedprefs.Storage, encryptor sharedprefs.Encryptor) *EncryptedStorage {
	return &EncryptedStorage{inner: inner, encryptor: encryptor}
}

// Get opens the entry read from the wrapped backend.
func (s *EncryptedStorage) Get(ctx context.Context, namespace, key string) (*sharedprefs.Entry, error) {
	entry, err := s.inner.Get(ctx, namespace, key)
	if err != nil {
		return nil, err
	}
	return s.open(entry)
}

// Set seals a copy of entry and stores it in the wrapped backend.
func (s *EncryptedStorage) Set(ctx context.Context, entry *sharedprefs.Entry) error {
	if err := sharedprefs.ValidateEntry(entry); err != nil {
		return err
	}
	sealed, err := s.seal(entry)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, sealed)
}

// Delete forwards to the wrapped backend.
func (s *EncryptedStorage) Delete(ctx context.Context, namespace, key string) error {
	return s.inner.Delete(ctx, namespace, key)
}

// GetAll opens every entry of namespace.
func (s *EncryptedStorage) GetAll(ctx context.Context, namespace string) (map[string]*sharedprefs.Entry, error) {
	entries, err := s.inner.GetAll(ctx, namespace)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*sharedprefs.Entry, len(entries))
	for key, entry := range entries {
		opened, err := s.open(entry)
		if err != nil {
			return nil, err
		}
		out[key] = opened
	}
	return out, nil
}

// Close closes the wrapped backend.
func (s *EncryptedStorage) Close() error {
	return s.inner.Close()
}

func (s *EncryptedStorage) seal(entry *sharedprefs.Entry) (*sharedprefs.Entry, error) {
	out := entry.Clone()
	var err error
	switch entry.Kind {
	case sharedprefs.KindString:
		out.Value, err = s.encryptor.Encrypt(entry.Value.(string))
	case sharedprefs.KindStringSet:
		out.Value, err = mapSet(entry.Value.([]string), s.encryptor.Encrypt)
	}
	if err != nil {
		return nil, fmt.Errorf("encrypting preference '%s/%s': %w", entry.Namespace, entry.Key, err)
	}
	return out, nil
}

func (s *EncryptedStorage) open(entry *sharedprefs.Entry) (*sharedprefs.Entry, error) {
	var err error
	switch entry.Kind {
	case sharedprefs.KindString:
		ciphertext, ok := entry.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: '%s/%s' holds %T", sharedprefs.ErrSerialization, entry.Namespace, entry.Key, entry.Value)
		}
		entry.Value, err = s.encryptor.Decrypt(ciphertext)
	case sharedprefs.KindStringSet:
		sealed, ok := entry.Value.([]string)
		if !ok {
			return nil, fmt.Errorf("%w: '%s/%s' holds %T", sharedprefs.ErrSerialization, entry.Namespace, entry.Key, entry.Value)
		}
		entry.Value, err = mapSet(sealed, s.encryptor.Decrypt)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decrypting '%s/%s': %v", sharedprefs.ErrSerialization, entry.Namespace, entry.Key, err)
	}
	return entry, nil
}

// mapSet applies fn to every element and returns the result sorted, as string
// sets must be.
func mapSet(in []string, fn func(string) (string, error)) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, v := range in {
		mapped, err := fn(v)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
