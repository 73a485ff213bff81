package sources

import (
	"context"
	"sync"
	"time"
)

// Limiter paces requests against reddit's rate limit, which every analysis in the
// process (or, with ValkeyLimiter, every instance) shares.
type Limiter interface {
	Wait(ctx context.Context) error
}

// IntervalLimiter spaces requests evenly inside a single process.
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewIntervalLimiter allows perMinute requests per minute; zero disables pacing.
func NewIntervalLimiter(perMinute int) *IntervalLimiter {
	var interval time.Duration
	if perMinute > 0 {
		interval = time.Minute / time.Duration(perMinute)
	}
	return &IntervalLimiter{interval: interval}
}

func (l *IntervalLimiter) Wait(ctx context.Context) error {
	if l.interval == 0 {
		return ctx.Err()
	}

	l.mu.Lock()
	now := time.Now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	return sleepCtx(ctx, time.Until(slot))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
