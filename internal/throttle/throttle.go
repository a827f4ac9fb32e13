// Package throttle bounds the outbound call rate for batched work.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits at most calls permits per sliding window. Permits are
// paced evenly across the window (continuous refill), so a burst at a
// window boundary can never double the effective rate. Safe for
// concurrent callers.
type Limiter struct {
	rl *rate.Limiter
}

// New returns a limiter admitting calls permits per window. With the
// default budget of 4 calls per 10s, one permit frees every 2.5s and the
// fifth back-to-back caller waits out the full window.
func New(calls int, window time.Duration) *Limiter {
	if calls < 1 {
		calls = 1
	}
	if window <= 0 {
		window = time.Second
	}
	interval := window / time.Duration(calls)
	return &Limiter{rl: rate.NewLimiter(rate.Every(interval), 1)}
}

// Acquire blocks until a permit is available or ctx is done, then
// consumes the permit.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.rl.Wait(ctx)
}
