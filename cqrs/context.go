package cqrs

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/deeplines/buildingblocks/bus"
	"github.com/deeplines/buildingblocks/uow"
)

// UserContext identifies the caller of a request.
type UserContext struct {
	UserID      string
	Role        string
	Permissions []string
	WorkspaceID string
}

// HasPermission reports whether the user holds the given permission.
func (u *UserContext) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	return lo.Contains(u.Permissions, permission)
}

// RequestContext carries per-request dispatch state through the
// behavior pipeline. Commands and queries opt in by embedding it and
// being dispatched as pointers; behaviors that need it no-op when the
// payload does not carry one.
type RequestContext struct {
	CorrelationID uuid.UUID
	User          *UserContext

	// UnitOfWork and RequiresTransaction drive the transaction behavior.
	UnitOfWork          uow.UnitOfWork
	RequiresTransaction bool

	// Keys for the keyed behaviors. An empty key opts the request out
	// of the corresponding behavior.
	RateLimitKey      string
	CircuitBreakerKey string
	CacheKey          string

	// DomainEvents collected during handler execution, persisted by the
	// outbox behavior after the handler succeeds.
	DomainEvents []bus.Event
}

// NewRequestContext returns a RequestContext with a fresh correlation ID.
func NewRequestContext() RequestContext {
	return RequestContext{CorrelationID: uuid.New()}
}

// WithCorrelationID overrides the generated correlation ID, typically to
// continue a correlation started by an upstream request.
func (c RequestContext) WithCorrelationID(id uuid.UUID) RequestContext {
	c.CorrelationID = id
	return c
}

// WithUser attaches the calling user.
func (c RequestContext) WithUser(user *UserContext) RequestContext {
	c.User = user
	return c
}

// WithTransaction attaches a unit of work and marks the request as
// requiring a transaction.
func (c RequestContext) WithTransaction(u uow.UnitOfWork) RequestContext {
	c.UnitOfWork = u
	c.RequiresTransaction = true
	return c
}

// WithUnitOfWork attaches a unit of work without requiring a transaction.
// Handlers then share the caller's connection but manage no transaction.
func (c RequestContext) WithUnitOfWork(u uow.UnitOfWork) RequestContext {
	c.UnitOfWork = u
	return c
}

// WithRateLimitKey opts the request into rate limiting under the given key.
func (c RequestContext) WithRateLimitKey(key string) RequestContext {
	c.RateLimitKey = key
	return c
}

// WithCircuitBreakerKey opts the request into circuit breaking under the
// given key.
func (c RequestContext) WithCircuitBreakerKey(key string) RequestContext {
	c.CircuitBreakerKey = key
	return c
}

// WithCacheKey opts the request into result caching under the given key.
func (c RequestContext) WithCacheKey(key string) RequestContext {
	c.CacheKey = key
	return c
}

// AddDomainEvent queues an event for outbox persistence.
func (c *RequestContext) AddDomainEvent(event bus.Event) {
	c.DomainEvents = append(c.DomainEvents, event)
}

func (c *RequestContext) requestContext() *RequestContext { return c }

// ContextOf extracts the embedded RequestContext from a request payload.
// Returns nil when the payload does not embed one or is not a pointer.
func ContextOf(payload any) *RequestContext {
	if carrier, ok := payload.(interface{ requestContext() *RequestContext }); ok {
		return carrier.requestContext()
	}
	return nil
}
