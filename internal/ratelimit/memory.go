package ratelimit

import (
	"context"
	"sync"
	"time"
)

// pruneEvery controls how often expired records are swept from the map.
const pruneEvery = 1024

type record struct {
	count         int
	windowResetAt time.Time
}

// MemoryLimiter keeps its records in process memory. State is lost on restart
// and not shared between instances; use RedisLimiter for that.
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time

	mu      sync.Mutex
	records map[string]*record
	calls   int
}

func NewMemoryLimiter(p Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:  p.withDefaults(),
		now:     time.Now,
		records: make(map[string]*record),
	}
}

// Allow increments the record for key under a single lock, so concurrent
// attempts from one client can never pass the ceiling together.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%pruneEvery == 0 {
		l.pruneLocked(now)
	}

	rec, ok := l.records[key]
	if !ok || now.After(rec.windowResetAt) {
		l.records[key] = &record{count: 1, windowResetAt: now.Add(l.policy.Window)}
		return true, nil
	}

	rec.count++
	return rec.count <= l.policy.MaxAttempts, nil
}

// Len reports how many client records are currently held.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

func (l *MemoryLimiter) pruneLocked(now time.Time) {
	for k, rec := range l.records {
		if now.After(rec.windowResetAt) {
			delete(l.records, k)
		}
	}
}
