package httputil

import (
	"context"
	"time"
)

// RateLimiter enforces a minimum delay between successive grants.
// It is safe for concurrent use; waiters are served one at a time.
type RateLimiter struct {
	delay time.Duration
	slot  chan struct{}
	last  time.Time
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a limiter spacing grants at least delay apart.
// A non-positive delay never waits.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{
		delay: delay,
		slot:  make(chan struct{}, 1),
		now:   time.Now,
		sleep: SleepContext,
	}
}

// WithClock replaces the clock and sleep functions. Intended for tests.
func (l *RateLimiter) WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) *RateLimiter {
	l.now = now
	l.sleep = sleep
	return l
}

// Delay returns the configured minimum spacing.
func (l *RateLimiter) Delay() time.Duration { return l.delay }

// Acquire blocks until at least Delay has passed since the previous grant,
// then records the new grant time. The elapsed-time check is made only after
// the caller holds the limiter, so concurrent callers cannot share a window.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	if l.delay <= 0 {
		return ctx.Err()
	}

	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.slot }()

	if !l.last.IsZero() {
		if wait := l.delay - l.now().Sub(l.last); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	l.last = l.now()
	return nil
}
