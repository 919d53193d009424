// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// limiter tracks the provider's rolling rate-limit quota: the remaining
// call budget and the reset timestamp, both refreshed from response
// headers. All reads and decrements go through one mutex so concurrent
// analyzer workers share a single consistent view (R4.1).
type limiter struct {
	mu        sync.Mutex
	remaining int
	reset     time.Time
	seeded    bool

	// now is a test seam.
	now func() time.Time
}

func newLimiter() *limiter {
	return &limiter{now: time.Now}
}

// acquire reserves one call from the quota. When the budget is exhausted
// it blocks cooperatively until the reset timestamp, honoring ctx
// cancellation, then proceeds optimistically; the next observe refreshes
// the real budget.
func (l *limiter) acquire(ctx context.Context) error {
	l.mu.Lock()
	if !l.seeded {
		l.mu.Unlock()
		return nil
	}
	if l.remaining > 0 {
		l.remaining--
		l.mu.Unlock()
		return nil
	}
	wait := l.reset.Sub(l.now())
	l.seeded = false
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// observe refreshes the quota view from X-RateLimit-* response headers.
// Headers the provider did not send leave the view unchanged.
func (l *limiter) observe(h http.Header) {
	rem, err := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.remaining = rem
	l.seeded = true
	if unix, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		l.reset = time.Unix(unix, 0)
	}
}

// waitReset blocks until the known reset timestamp, or returns
// immediately when no reset is known or it already passed.
func (l *limiter) waitReset(ctx context.Context) error {
	l.mu.Lock()
	wait := l.reset.Sub(l.now())
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
