package ratelimit

import (
	"sync"
	"time"
)

// Limiter decides if a request from key should be allowed.
// Allow returns (allowed, retryAfterSeconds). When allowed is false,
// retryAfterSeconds may be set for the Retry-After response header (0 = omit).
type Limiter interface {
	Allow(key string) (allowed bool, retryAfterSec int)
}

// Noop allows all requests.
type Noop struct{}

func (Noop) Allow(key string) (bool, int) { return true, 0 }

type window struct {
	start time.Time
	count int
}

// InMemory is a fixed-window rate limiter per key (single-instance only).
// Stale windows are dropped lazily on the next Allow for their key.
type InMemory struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	nowFunc func() time.Time
}

// NewInMemory allows up to limit requests per key per period.
func NewInMemory(limit int, period time.Duration) *InMemory {
	return &InMemory{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		nowFunc: time.Now,
	}
}

func (r *InMemory) Allow(key string) (allowed bool, retryAfterSec int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	w := r.windows[key]
	if w == nil || now.Sub(w.start) >= r.period {
		r.windows[key] = &window{start: now, count: 1}
		return true, 0
	}
	if w.count >= r.limit {
		retryAfter := w.start.Add(r.period).Sub(now)
		retryAfterSec = int(retryAfter.Seconds())
		if retryAfterSec < 1 {
			retryAfterSec = 1
		}
		return false, retryAfterSec
	}
	w.count++
	return true, 0
}
