// Package storage provides a SQLite-based implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/CreativeUnicorns/sharedprefs"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS preferences (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			kind TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, key)
		);
	`

	sqliteUpsertSQL = `
		INSERT INTO preferences (namespace, key, kind, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(namespace, key)
		DO UPDATE SET kind = excluded.kind, value = excluded.value, updated_at = excluded.updated_at
	`

	sqliteSelectSQL = `
		SELECT namespace, key, kind, value, updated_at
		FROM preferences
		WHERE namespace = ? AND key = ?
	`

	sqliteSelectAllSQL = `
		SELECT namespace, key, kind, value, updated_at
		FROM preferences
		WHERE namespace = ?
	`

	sqliteDeleteSQL = `
		DELETE FROM preferences
		WHERE namespace = ? AND key = ?
	`
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the SQLite database at dbPath and runs migrations.
// Pass ":memory:" for a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(sqliteCreateTableSQL)
	return err
}

// Get retrieves an entry by namespace and key.
// It returns sharedprefs.ErrNotFound if the entry does not exist.
func (s *SQLiteStorage) Get(ctx context.Context, namespace, key string) (*sharedprefs.Entry, error) {
	entry, err := scanEntry(s.db.QueryRowContext(ctx, sqliteSelectSQL, namespace, key))
	if notFound(err) {
		return nil, sharedprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get preference '%s/%s': %w", namespace, key, err)
	}
	return entry, nil
}

// Set inserts or replaces an entry, including its kind.
func (s *SQLiteStorage) Set(ctx context.Context, entry *sharedprefs.Entry) error {
	valueJSON, updatedAt, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	_, err = s.db.ExecContext(ctx, sqliteUpsertSQL,
		entry.Namespace,
		entry.Key,
		string(entry.Kind),
		string(valueJSON),
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to set preference '%s/%s': %w", entry.Namespace, entry.Key, err)
	}
	return nil
}

// Delete removes an entry. It returns sharedprefs.ErrNotFound if the entry does not exist.
func (s *SQLiteStorage) Delete(ctx context.Context, namespace, key string) error {
	result, err := s.db.ExecContext(ctx, sqliteDeleteSQL, namespace, key)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete preference '%s/%s': %w", namespace, key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return sharedprefs.ErrNotFound
	}
	return nil
}

// GetAll retrieves every entry in namespace.
func (s *SQLiteStorage) GetAll(ctx context.Context, namespace string) (map[string]*sharedprefs.Entry, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectAllSQL, namespace)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query preferences: %w", err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return entries, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
