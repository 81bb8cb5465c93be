// Package storage provides a PostgreSQL-based implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/CreativeUnicorns/sharedprefs"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS preferences (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			kind TEXT NOT NULL,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, key)
		);
	`

	upsertSQL = `
		INSERT INTO preferences (namespace, key, kind, value, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (namespace, key)
		DO UPDATE SET kind = $3, value = $4, updated_at = $5
	`

	selectSQL = `
		SELECT namespace, key, kind, value, updated_at
		FROM preferences
		WHERE namespace = $1 AND key = $2
	`

	selectAllSQL = `
		SELECT namespace, key, kind, value, updated_at
		FROM preferences
		WHERE namespace = $1
	`

	deleteSQL = `
		DELETE FROM preferences
		WHERE namespace = $1 AND key = $2
	`
)

// PostgresStorage implements the Storage interface using PostgreSQL.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage connects using connString and runs migrations.
func NewPostgresStorage(connString string) (*PostgresStorage, error) {
	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	storage := &PostgresStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) migrate() error {
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

// Get retrieves an entry by namespace and key.
// It returns sharedprefs.ErrNotFound if the entry does not exist.
func (s *PostgresStorage) Get(ctx context.Context, namespace, key string) (*sharedprefs.Entry, error) {
	entry, err := scanEntry(s.db.QueryRowContext(ctx, selectSQL, namespace, key))
	if notFound(err) {
		return nil, sharedprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get preference '%s/%s': %w", namespace, key, err)
	}
	return entry, nil
}

// Set inserts or replaces an entry, including its kind.
func (s *PostgresStorage) Set(ctx context.Context, entry *sharedprefs.Entry) error {
	valueJSON, updatedAt, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	_, err = s.db.ExecContext(ctx, upsertSQL,
		entry.Namespace,
		entry.Key,
		string(entry.Kind),
		valueJSON,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to execute upsert for '%s/%s': %w", entry.Namespace, entry.Key, err)
	}
	return nil
}

// Delete removes an entry. It returns sharedprefs.ErrNotFound if the entry does not exist.
func (s *PostgresStorage) Delete(ctx context.Context, namespace, key string) error {
	result, err := s.db.ExecContext(ctx, deleteSQL, namespace, key)
	if err != nil {
		return fmt.Errorf("postgres: failed to execute delete for '%s/%s': %w", namespace, key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: failed to get affected rows for delete '%s/%s': %w", namespace, key, err)
	}
	if rowsAffected == 0 {
		return sharedprefs.ErrNotFound
	}
	return nil
}

// GetAll retrieves every entry in namespace.
func (s *PostgresStorage) GetAll(ctx context.Context, namespace string) (map[string]*sharedprefs.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectAllSQL, namespace)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query preferences for namespace '%s': %w", namespace, err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return entries, nil
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
