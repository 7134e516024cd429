package cqrs

import (
	"reflect"
	"strings"
)

// Kind distinguishes the three request categories the mediator routes.
type Kind uint8

const (
	KindCommand Kind = iota + 1
	KindCommandWithResponse
	KindQuery
)

// Phase returns the pipeline phase label used in dispatch errors.
func (k Kind) Phase() string {
	switch k {
	case KindCommand:
		return "CommandExecution"
	case KindCommandWithResponse:
		return "CommandWithResponseExecution"
	case KindQuery:
		return "QueryExecution"
	default:
		return "UnknownExecution"
	}
}

// Request is the envelope passed through the behavior pipeline. It
// carries the raw command or query payload together with its kind and
// short type name.
type Request struct {
	kind    Kind
	name    string
	payload any
}

func newRequest(kind Kind, payload any) Request {
	return Request{
		kind:    kind,
		name:    requestName(payload),
		payload: payload,
	}
}

// Kind reports whether the payload is a command, a command with
// response, or a query.
func (r Request) Kind() Kind { return r.kind }

// Name returns the payload's type name without package or pointer
// qualifiers.
func (r Request) Name() string { return r.name }

// Payload returns the raw command or query.
func (r Request) Payload() any { return r.payload }

// Context returns the request's dispatch context, or nil when the
// payload does not embed RequestContext.
func (r Request) Context() *RequestContext { return ContextOf(r.payload) }

func requestName(payload any) string {
	t := reflect.TypeOf(payload)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	// Anonymous types keep their full rendering.
	return strings.TrimPrefix(t.String(), "*")
}
