package behavior

import (
	"context"
	"sync"
	"time"

	"github.com/deeplines/buildingblocks/cqrs"
)

const rateLimitWindow = time.Minute

// RateLimiting bounds the number of calls per key within a trailing
// one-minute window. Rejected calls are not recorded, so they do not
// extend the window. Requests without a rate limit key pass through.
type RateLimiting struct {
	requestsPerMinute int

	mu    sync.Mutex
	calls map[string][]time.Time
	now   func() time.Time
}

// NewRateLimiting creates the rate limiting behavior.
func NewRateLimiting(requestsPerMinute int) *RateLimiting {
	return &RateLimiting{
		requestsPerMinute: requestsPerMinute,
		calls:             make(map[string][]time.Time),
		now:               time.Now,
	}
}

func (b *RateLimiting) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	rc := req.Context()
	if rc == nil || rc.RateLimitKey == "" {
		return next(ctx)
	}
	key := rc.RateLimitKey

	b.mu.Lock()
	now := b.now()
	cutoff := now.Add(-rateLimitWindow)

	recent := b.calls[key][:0]
	for _, t := range b.calls[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= b.requestsPerMinute {
		b.calls[key] = recent
		b.mu.Unlock()
		return nil, &cqrs.RateLimitExceededError{Key: key, Limit: b.requestsPerMinute}
	}

	b.calls[key] = append(recent, now)
	b.mu.Unlock()

	return next(ctx)
}
