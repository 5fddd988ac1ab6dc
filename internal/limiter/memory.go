package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter *rate.Limiter
	last    time.Time
}

// MemoryLimiter keeps a token bucket per key in process memory. The bucket
// holds the full window budget and refills at budget/window.
type MemoryLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	config      Config
	lastCleanup time.Time
	now         func() time.Time
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		config:  cfg.normalized(),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanupLocked(now)

	b, ok := l.buckets[key]
	if !ok {
		budget := l.config.maxFor(key)
		every := l.config.Window / time.Duration(budget)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), budget)}
		l.buckets[key] = b
	}
	b.last = now
	return b.limiter.AllowN(now, 1), nil
}

// cleanupLocked drops buckets idle for longer than a window; an idle bucket is full anyway.
func (l *MemoryLimiter) cleanupLocked(now time.Time) {
	if now.Sub(l.lastCleanup) < l.config.Window {
		return
	}
	l.lastCleanup = now
	for k, b := range l.buckets {
		if now.Sub(b.last) > l.config.Window {
			delete(l.buckets, k)
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
