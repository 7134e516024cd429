package cqrs

import "context"

// CommandHandler processes a command that returns no response.
type CommandHandler[C any] interface {
	Handle(ctx context.Context, cmd C) error
}

// CommandHandlerFunc adapts a function to CommandHandler.
type CommandHandlerFunc[C any] func(ctx context.Context, cmd C) error

func (f CommandHandlerFunc[C]) Handle(ctx context.Context, cmd C) error { return f(ctx, cmd) }

// CommandWithResponseHandler processes a command that returns a response.
type CommandWithResponseHandler[C, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// CommandWithResponseHandlerFunc adapts a function to
// CommandWithResponseHandler.
type CommandWithResponseHandlerFunc[C, R any] func(ctx context.Context, cmd C) (R, error)

func (f CommandWithResponseHandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// QueryHandler processes a query and returns its result.
type QueryHandler[Q, R any] interface {
	Handle(ctx context.Context, qry Q) (R, error)
}

// QueryHandlerFunc adapts a function to QueryHandler.
type QueryHandlerFunc[Q, R any] func(ctx context.Context, qry Q) (R, error)

func (f QueryHandlerFunc[Q, R]) Handle(ctx context.Context, qry Q) (R, error) { return f(ctx, qry) }

// Next advances the pipeline to the following behavior, or to the
// handler when invoked from the innermost behavior.
type Next func(ctx context.Context) (any, error)

// Behavior is a cross-cutting concern wrapped around handler execution.
// Behaviors run in registration order: the first registered behavior is
// the outermost. A behavior may short-circuit by not calling next.
type Behavior interface {
	Handle(ctx context.Context, req Request, next Next) (any, error)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(ctx context.Context, req Request, next Next) (any, error)

func (f BehaviorFunc) Handle(ctx context.Context, req Request, next Next) (any, error) {
	return f(ctx, req, next)
}
