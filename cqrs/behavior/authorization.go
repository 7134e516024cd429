package behavior

import (
	"context"

	"github.com/deeplines/buildingblocks/cqrs"
)

// Authorizer is implemented by requests that carry their own
// authorization logic.
type Authorizer interface {
	Authorize(ctx context.Context, user *cqrs.UserContext) (bool, error)
}

// PermissionRequirer is implemented by requests that demand a specific
// permission from the caller.
type PermissionRequirer interface {
	RequiredPermission() string
}

// Authorization rejects requests from unauthenticated or
// under-privileged callers before the handler runs.
type Authorization struct {
	requireAuthentication bool
}

// NewAuthorization creates the authorization behavior. When
// requireAuthentication is set, every request must carry a user context.
func NewAuthorization(requireAuthentication bool) *Authorization {
	return &Authorization{requireAuthentication: requireAuthentication}
}

func (b *Authorization) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	var user *cqrs.UserContext
	if rc := req.Context(); rc != nil {
		user = rc.User
	}

	if b.requireAuthentication && user == nil {
		return nil, &cqrs.AuthorizationError{RequestType: req.Name()}
	}

	if r, ok := req.Payload().(PermissionRequirer); ok {
		permission := r.RequiredPermission()
		if permission != "" && !user.HasPermission(permission) {
			authErr := &cqrs.AuthorizationError{
				RequestType:        req.Name(),
				RequiredPermission: permission,
			}
			if user != nil {
				authErr.UserID = user.UserID
			}
			return nil, authErr
		}
	}

	if a, ok := req.Payload().(Authorizer); ok {
		allowed, err := a.Authorize(ctx, user)
		if err != nil {
			return nil, err
		}
		if !allowed {
			authErr := &cqrs.AuthorizationError{RequestType: req.Name()}
			if user != nil {
				authErr.UserID = user.UserID
			}
			return nil, authErr
		}
	}

	return next(ctx)
}
