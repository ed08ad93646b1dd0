// ABOUTME: Exponential backoff with jitter for model API retries
// ABOUTME: Delay computes the wait, Wait sleeps unless the context ends first
package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// DefaultMaxBackoff caps a single wait
const DefaultMaxBackoff = 30 * time.Second

// Backoff doubles Base on every attempt up to Max, with +/-25% jitter
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// NewBackoff returns a backoff starting at base and capped at DefaultMaxBackoff
func NewBackoff(base time.Duration) Backoff {
	return Backoff{Base: base, Max: DefaultMaxBackoff}
}

// Delay returns how long to wait before the given retry attempt.
// Attempt 0 is the first call and never waits.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 0 || b.Base <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	limit := b.Max
	if limit <= 0 {
		limit = DefaultMaxBackoff
	}

	d := b.Base * time.Duration(1<<uint(attempt))
	if d > limit || d <= 0 {
		d = limit
	}

	half := int64(d) / 2
	if half <= 0 {
		return d
	}
	return d + time.Duration(rand.Int64N(half)) - d/4
}

// Wait sleeps for Delay(attempt) and returns ctx.Err() if ctx ends first
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	d := b.Delay(attempt)
	if d == 0 {
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
