// Package limiter enforces per-key creation quotas over a rolling window.
package limiter

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call. RetryAfter is set only when
// the request was rejected. Token identifies the recorded hit of an allowed
// request and is what Release takes back.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	Token      string
}

// CreationLimiter admits at most a fixed number of events per key within a
// rolling window. Rejected attempts are not counted.
type CreationLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	// Release drops a hit recorded by Allow, for work that failed after
	// admission. Unknown tokens are ignored.
	Release(ctx context.Context, key, token string) error
}
