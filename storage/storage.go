// Package storage provides Storage backends for the preference store.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CreativeUnicorns/sharedprefs"
)

// Compile-time checks that every backend satisfies sharedprefs.Storage.
var (
	_ sharedprefs.Storage = (*MemoryStorage)(nil)
	_ sharedprefs.Storage = (*FileStorage)(nil)
	_ sharedprefs.Storage = (*SQLiteStorage)(nil)
	_ sharedprefs.Storage = (*PostgresStorage)(nil)
	_ sharedprefs.Storage = (*EncryptedStorage)(nil)
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads a (namespace, key, kind, value, updated_at) row.
func scanEntry(row rowScanner) (*sharedprefs.Entry, error) {
	var entry sharedprefs.Entry
	var kind string
	var valueJSON []byte

	if err := row.Scan(&entry.Namespace, &entry.Key, &kind, &valueJSON, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	return decodeEntry(&entry, kind, valueJSON)
}

func decodeEntry(entry *sharedprefs.Entry, kind string, valueJSON []byte) (*sharedprefs.Entry, error) {
	k, err := sharedprefs.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: key '%s': %v", sharedprefs.ErrSerialization, entry.Key, err)
	}
	value, err := sharedprefs.DecodeValue(k, valueJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal value for key '%s': %w", entry.Key, err)
	}
	entry.Kind = k
	entry.Value = value
	return entry, nil
}

// encodeEntry validates entry and returns its JSON value and the timestamp to persist.
func encodeEntry(entry *sharedprefs.Entry) ([]byte, time.Time, error) {
	if err := sharedprefs.ValidateEntry(entry); err != nil {
		return nil, time.Time{}, err
	}
	valueJSON, err := sharedprefs.EncodeValue(entry.Kind, entry.Value)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to marshal value for key '%s': %w", entry.Key, err)
	}
	updatedAt := entry.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return valueJSON, updatedAt, nil
}

// scanEntries drains rows into a key -> entry map and closes rows.
func scanEntries(rows *sql.Rows) (map[string]*sharedprefs.Entry, error) {
	defer rows.Close()

	entries := make(map[string]*sharedprefs.Entry)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference row: %w", err)
		}
		entries[entry.Key] = entry
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preference rows: %w", err)
	}
	return entries, nil
}

// notFound maps sql.ErrNoRows to sharedprefs.ErrNotFound.
func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
