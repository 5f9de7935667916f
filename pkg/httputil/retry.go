package httputil

import (
	"context"
	"math"
	"time"
)

// Default retry settings.
const (
	DefaultMaxAttempts = 3
	DefaultMultiplier  = time.Second
	DefaultBase        = 2.0
	DefaultMinWait     = 2 * time.Second
	DefaultMaxWait     = 10 * time.Second
)

// RetryPolicy retries transient failures with clamped exponential backoff.
// The zero value is usable and behaves like [DefaultRetryPolicy].
type RetryPolicy struct {
	MaxAttempts int           // Total attempts including the first (default 3)
	Multiplier  time.Duration // Backoff multiplier (default 1s)
	Base        float64       // Exponent base (default 2)
	Min         time.Duration // Lower clamp on a single wait (default 2s)
	Max         time.Duration // Upper clamp on a single wait (default 10s)

	// OnRetry is called before each backoff sleep. Optional.
	OnRetry func(attempt int, wait time.Duration, err error)

	// Sleep replaces the backoff sleep. Tests set it to avoid real waits.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the policy used by source clients.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Multiplier:  DefaultMultiplier,
		Base:        DefaultBase,
		Min:         DefaultMinWait,
		Max:         DefaultMaxWait,
	}
}

// Do runs fn until it succeeds, returns a non-transient error, or the attempt
// budget is spent. fn receives the 1-based attempt number.
// Returns the last error on exhaustion, or ctx.Err() if cancelled while waiting.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	p = p.withDefaults()
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if lastErr = fn(attempt); lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || attempt == p.MaxAttempts {
			return lastErr
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, lastErr)
		}
		if err := p.Sleep(ctx, wait); err != nil {
			return err
		}
	}
	return lastErr
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()
	wait := time.Duration(float64(p.Multiplier) * math.Pow(p.Base, float64(attempt-1)))
	return min(max(wait, p.Min), p.Max)
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Multiplier <= 0 {
		p.Multiplier = DefaultMultiplier
	}
	if p.Base <= 0 {
		p.Base = DefaultBase
	}
	if p.Min <= 0 && p.Max <= 0 {
		p.Min, p.Max = DefaultMinWait, DefaultMaxWait
	}
	if p.Max < p.Min {
		p.Max = p.Min
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}
	return p
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
