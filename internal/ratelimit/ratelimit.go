package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces calls per key (an API endpoint, an account) and honors server
// reported reset times.
type Limiter interface {
	// Wait blocks until a call for key is allowed or ctx is done.
	Wait(ctx context.Context, key string) error
	// Block holds back every call for key until the given time.
	Block(key string, until time.Time)
}

type bucket struct {
	limiter *rate.Limiter
	until   time.Time
}

// InMemoryLimiter is an implementation of Limiter stored in memory
type InMemoryLimiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	r       rate.Limit // Rate of adding tokens (e.g., 15 requests per 15 minutes)
	b       int        // Bucket size
	now     func() time.Time
}

// NewInMemoryLimiter creates a new rate limiter
// Example: NewInMemoryLimiter(15, 15*time.Minute, 1) -> one request per minute per key
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	if requests <= 0 || per <= 0 {
		return &InMemoryLimiter{buckets: make(map[string]*bucket), r: rate.Inf, b: 1, now: time.Now}
	}
	if burst <= 0 {
		burst = 1
	}
	return &InMemoryLimiter{
		buckets: make(map[string]*bucket),
		r:       rate.Every(per / time.Duration(requests)),
		b:       burst,
		now:     time.Now,
	}
}

var _ Limiter = (*InMemoryLimiter)(nil)

func (l *InMemoryLimiter) get(key string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(l.r, l.b)}
		l.buckets[key] = b
	}
	return b
}

func (l *InMemoryLimiter) Wait(ctx context.Context, key string) error {
	b := l.get(key)

	l.mu.Lock()
	until := b.until
	l.mu.Unlock()

	if d := until.Sub(l.now()); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	return b.limiter.Wait(ctx)
}

func (l *InMemoryLimiter) Block(key string, until time.Time) {
	b := l.get(key)

	l.mu.Lock()
	defer l.mu.Unlock()
	if until.After(b.until) {
		b.until = until
	}
}
