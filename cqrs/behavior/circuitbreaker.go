package behavior

import (
	"context"
	"sync"
	"time"

	"github.com/deeplines/buildingblocks/cqrs"
)

type breakerState struct {
	failures    int
	lastFailure time.Time
}

// CircuitBreaker fails fast for keys whose recent calls kept failing.
// After the failure threshold is reached the breaker stays open until
// the recovery timeout elapses; the next call is then let through and
// its outcome resets or re-opens the breaker. Requests without a
// breaker key pass through.
type CircuitBreaker struct {
	threshold       int
	recoveryTimeout time.Duration

	mu    sync.Mutex
	state map[string]*breakerState
	now   func() time.Time
}

// NewCircuitBreaker creates the circuit breaker behavior.
func NewCircuitBreaker(threshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:       threshold,
		recoveryTimeout: recoveryTimeout,
		state:           make(map[string]*breakerState),
		now:             time.Now,
	}
}

func (b *CircuitBreaker) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	rc := req.Context()
	if rc == nil || rc.CircuitBreakerKey == "" {
		return next(ctx)
	}
	key := rc.CircuitBreakerKey

	b.mu.Lock()
	s, ok := b.state[key]
	if !ok {
		s = &breakerState{}
		b.state[key] = s
	}
	if s.failures >= b.threshold && b.now().Sub(s.lastFailure) < b.recoveryTimeout {
		failures := s.failures
		b.mu.Unlock()
		return nil, &cqrs.CircuitBreakerOpenError{
			Key:       key,
			Failures:  failures,
			Threshold: b.threshold,
		}
	}
	b.mu.Unlock()

	result, err := next(ctx)

	b.mu.Lock()
	if err != nil {
		s.failures++
		s.lastFailure = b.now()
	} else {
		s.failures = 0
	}
	b.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return result, nil
}
