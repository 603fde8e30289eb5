// Package ratelimit implements a single-permit token bucket shared by the
// Hostaway client and the Slack notifier.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// pollInterval bounds how often Wait re-checks the allowance. Callers must
// not rely on sub-100ms spacing precision.
const pollInterval = 100 * time.Millisecond

// Limiter grants at most rate permits per second. The allowance accumulates
// with elapsed monotonic time and resets to zero on every grant, so a burst
// after idling is capped at a single permit.
type Limiter struct {
	mu        sync.Mutex
	rate      float64
	allowance float64
	lastCheck time.Time
}

// New returns a limiter starting with one full permit.
func New(perSecond float64) *Limiter {
	return &Limiter{
		rate:      perSecond,
		allowance: 1.0,
		lastCheck: time.Now(),
	}
}

// TryAcquire reports whether a permit is available and consumes it if so.
// Assumes the rate-limited call happens as soon as it returns true.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastCheck).Seconds()
	l.allowance += elapsed * l.rate
	l.lastCheck = now

	if l.allowance >= 1.0 {
		l.allowance = 0.0
		return true
	}
	return false
}

// Wait blocks until a permit is granted.
func (l *Limiter) Wait() {
	for !l.TryAcquire() {
		time.Sleep(pollInterval)
	}
}

// WaitContext blocks until a permit is granted or ctx is done.
func (l *Limiter) WaitContext(ctx context.Context) error {
	for !l.TryAcquire() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return nil
}
