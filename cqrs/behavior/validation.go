package behavior

import (
	"context"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/val"
)

// SelfValidator is implemented by requests that carry their own
// validation logic on top of struct tags.
type SelfValidator interface {
	Validate() error
}

// Validation rejects invalid requests before they reach the handler.
// Struct tag rules run first, then the request's own Validate method
// when it has one.
type Validation struct{}

// NewValidation creates the validation behavior.
func NewValidation() *Validation {
	return &Validation{}
}

func (b *Validation) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	violations := val.Violations(req.Payload())

	if v, ok := req.Payload().(SelfValidator); ok {
		if err := v.Validate(); err != nil {
			violations = append(violations, err.Error())
		}
	}

	if len(violations) > 0 {
		return nil, &cqrs.ValidationError{
			RequestType: req.Name(),
			Violations:  violations,
		}
	}

	return next(ctx)
}
