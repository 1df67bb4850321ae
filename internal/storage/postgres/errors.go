package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error classes used for failure classification.
const (
	pgForeignKeyViolation  = "23503"
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// isForeignKeyViolation checks if an error is a PostgreSQL FK violation,
// optionally narrowed to a constraint mentioning the given column.
func isForeignKeyViolation(err error, column string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgForeignKeyViolation {
			if column == "" {
				return true
			}
			return strings.Contains(pgErr.ConstraintName, column) ||
				strings.Contains(pgErr.Message, column)
		}
	}
	return false
}

// isUniqueViolation checks if an error is a PostgreSQL unique-constraint
// violation, optionally narrowed to a constraint mentioning the column.
func isUniqueViolation(err error, column string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			if column == "" {
				return true
			}
			return strings.Contains(pgErr.ConstraintName, column) ||
				strings.Contains(pgErr.Message, column)
		}
	}
	return false
}

// isTransient reports whether the error is worth an automatic retry:
// serialization failures, deadlocks, and connection-class (08xxx)
// failures. Constraint violations and not-found conditions are permanent.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected {
			return true
		}
		return strings.HasPrefix(pgErr.Code, "08")
	}

	// pgconn reports broken connections outside the SQLSTATE taxonomy.
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
