package oracle

import (
	"context"
	"sync"
	"time"
)

// Limiter serializes the process-wide cooldown taken after the oracle
// reports rate limiting. Injected into the client so tests can substitute
// a no-op.
type Limiter interface {
	Cooldown(ctx context.Context)
}

type fixedCooldownLimiter struct {
	mu       sync.Mutex
	interval time.Duration
}

func NewFixedCooldownLimiter(interval time.Duration) Limiter {
	return &fixedCooldownLimiter{interval: interval}
}

// Cooldown waits under the lock: concurrent guard evaluations hitting the
// same limited oracle wait for one shared cooldown instead of stacking them.
// A cancelled context cuts the wait short.
func (l *fixedCooldownLimiter) Cooldown(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timer := time.NewTimer(l.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type nopLimiter struct{}

func NewNopLimiter() Limiter {
	return nopLimiter{}
}

func (nopLimiter) Cooldown(context.Context) {}
