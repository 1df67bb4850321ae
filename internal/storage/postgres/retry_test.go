package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toucanlabs/toucans-api/internal/domain"
)

func newRetryStore(maxAttempts int, slept *[]time.Duration) *Store {
	return NewStore(nil, RetryPolicy{
		MaxAttempts:    maxAttempts,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     16 * time.Second,
		sleep: func(_ context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return nil
		},
	})
}

func TestWithRetryTransientFailureEventuallySucceeds(t *testing.T) {
	var slept []time.Duration
	store := newRetryStore(5, &slept)

	attempts := 0
	err := store.withRetry(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	// Exponential backoff between attempts: 2s then 4s.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, slept)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	store := newRetryStore(5, &slept)

	attempts := 0
	transient := &pgconn.PgError{Code: "40P01"}
	err := store.withRetry(context.Background(), "op", func(context.Context) error {
		attempts++
		return transient
	})

	require.Error(t, err)
	assert.Equal(t, 5, attempts)
	// 4 waits between 5 attempts, capped at the max backoff.
	assert.Equal(t, []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second,
	}, slept)
}

func TestWithRetryPermanentFailureReturnsImmediately(t *testing.T) {
	var slept []time.Duration
	store := newRetryStore(5, &slept)

	attempts := 0
	err := store.withRetry(context.Background(), "op", func(context.Context) error {
		attempts++
		return domain.ErrListNotFound
	})

	require.ErrorIs(t, err, domain.ErrListNotFound)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, slept)
}

func TestWithRetryBackoffCapped(t *testing.T) {
	var slept []time.Duration
	store := NewStore(nil, RetryPolicy{
		MaxAttempts:    6,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     5 * time.Second,
		sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	})

	err := store.withRetry(context.Background(), "op", func(context.Context) error {
		return &pgconn.PgError{Code: "08006"}
	})

	require.Error(t, err)
	assert.Equal(t, []time.Duration{
		2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second, 5 * time.Second,
	}, slept)
}

func TestWithRetryStopsOnContextCancel(t *testing.T) {
	store := NewStore(nil, RetryPolicy{
		MaxAttempts:    5,
		InitialBackoff: time.Second,
		MaxBackoff:     time.Second,
		sleep:          sleepCtx,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := store.withRetry(ctx, "op", func(context.Context) error {
		attempts++
		return &pgconn.PgError{Code: "40001"}
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isTransient(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, isTransient(&pgconn.PgError{Code: "08006"}))

	assert.False(t, isTransient(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isTransient(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isTransient(domain.ErrItemNotFound))
	assert.False(t, isTransient(errors.New("plain failure")))
	assert.False(t, isTransient(nil))
}

func TestErrorClassifiers(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "todo_lists_owner_id_fkey"}
	assert.True(t, isForeignKeyViolation(fk, "owner_id"))
	assert.True(t, isForeignKeyViolation(fk, ""))
	assert.False(t, isForeignKeyViolation(fk, "assigned_to_id"))

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	assert.True(t, isUniqueViolation(unique, "email"))
	assert.False(t, isUniqueViolation(unique, "name"))
	assert.False(t, isUniqueViolation(fk, "email"))
}
