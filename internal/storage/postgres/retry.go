package postgres

import (
	"context"
	"log/slog"
	"time"
)

// Default retry policy: 5 attempts with exponential backoff
// (2s, 4s, 8s, 16s between attempts, ~30s total budget).
const (
	defaultMaxAttempts    = 5
	defaultInitialBackoff = 2 * time.Second
	defaultMaxBackoff     = 16 * time.Second
)

// RetryPolicy bounds automatic retry of transient store failures.
// Exhausting the attempts is a fatal failure for that request.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// sleep is replaceable in tests to avoid real waits.
	sleep func(context.Context, time.Duration) error
}

func (p *RetryPolicy) applyDefaults() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultInitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = defaultMaxBackoff
	}
	if p.sleep == nil {
		p.sleep = sleepCtx
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withRetry runs fn, retrying transient failures per the policy.
// Permanent failures (constraint violations, not-found) return
// immediately; context cancellation stops the loop.
func (s *Store) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := s.retry.InitialBackoff

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt >= s.retry.MaxAttempts {
			break
		}

		slog.WarnContext(ctx, "retrying transient store failure",
			"operation", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err)

		if sleepErr := s.retry.sleep(ctx, backoff); sleepErr != nil {
			return sleepErr
		}

		backoff = min(backoff*2, s.retry.MaxBackoff)
	}

	slog.ErrorContext(ctx, "transient store failure retries exhausted",
		"operation", op,
		"attempts", s.retry.MaxAttempts,
		"error", err)
	return err
}
