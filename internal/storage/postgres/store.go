// Package postgres implements the entity repositories on PostgreSQL via
// pgx. All queries are parameterized; sort keys resolve through fixed
// allow-lists, never caller-supplied column names.
package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the User, TodoList, and TodoItem repositories backed
// by a single pgx connection pool. It is safe for concurrent use; each
// operation is scoped to one request and delegates transactional
// guarantees to the database.
type Store struct {
	pool  *pgxpool.Pool
	retry RetryPolicy
}

// NewStore creates a store on an existing pool.
func NewStore(pool *pgxpool.Pool, retry RetryPolicy) *Store {
	retry.applyDefaults()
	return &Store{pool: pool, retry: retry}
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// checkRowsAffected validates that an UPDATE/DELETE affected exactly one
// row, mapping zero rows to the entity's not-found error.
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
