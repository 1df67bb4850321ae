// Package sqlite implements the entity repositories on an embedded
// SQLite database via sqlx. It mirrors the postgres store's semantics,
// schema constraints included, and backs the repository and handler
// test suites, where a server-based database is unavailable.
package sqlite

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Store implements the User, TodoList, and TodoItem repositories backed
// by a SQLite database file (or :memory:).
type Store struct {
	db *sqlx.DB
}

// NewStore opens (or creates) the database at dsn, enables foreign keys,
// and applies the schema when the tables are missing.
func NewStore(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// The embedded driver opens a new connection per query by default;
	// pragmas are per-connection, so pin a single one.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	var tables int
	err = db.Get(&tables, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='users'")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if tables == 0 {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// checkRowsAffected validates that an UPDATE/DELETE affected a row,
// mapping zero rows to the entity's not-found error.
func checkRowsAffected(rowsAffected int64, notFound error, entityID string) error {
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", notFound, entityID)
	}
	return nil
}

// newID generates a time-ordered identifier for a new entity.
func newID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate id: %w", err)
	}
	return id, nil
}

// utcPtr normalizes an optional timestamp to UTC.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// SQLite reports constraint failures as plain text, so classification
// matches on the message.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") &&
		strings.Contains(err.Error(), column)
}
