package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type hit struct {
	at    time.Time
	token string
}

// MemoryLimiter keeps the accepted timestamps per key in process memory.
// Counts are not shared between server instances.
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	hits   map[string][]hit
}

func NewMemoryLimiter(limit int, window time.Duration, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		now:    now,
		hits:   make(map[string][]hit),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// timestamps are appended in order, so the live ones form a suffix
	hits := l.hits[key]
	i := 0
	for i < len(hits) && !hits[i].at.After(cutoff) {
		i++
	}
	hits = hits[i:]

	if len(hits) >= l.limit {
		l.hits[key] = hits
		return Decision{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: hits[0].at.Add(l.window).Sub(now),
		}, nil
	}

	token := uuid.NewString()
	hits = append(hits, hit{at: now, token: token})
	l.hits[key] = hits

	return Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(hits),
		Token:     token,
	}, nil
}

func (l *MemoryLimiter) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.hits[key]
	for i, h := range hits {
		if h.token == token {
			l.hits[key] = append(hits[:i], hits[i+1:]...)
			break
		}
	}
	return nil
}
