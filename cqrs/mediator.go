package cqrs

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"github.com/code19m/errx"

	"github.com/deeplines/buildingblocks/logger"
)

// invoker is a type-erased handler call.
type invoker func(ctx context.Context, payload any) (any, error)

// Mediator routes commands and queries to their registered handlers
// through the behavior pipeline. Safe for concurrent use; registration
// and dispatch may interleave.
type Mediator struct {
	mu                   sync.RWMutex
	commands             map[reflect.Type]invoker
	commandsWithResponse map[reflect.Type]invoker
	queries              map[reflect.Type]invoker
	behaviors            []Behavior
	logger               logger.Logger
}

// Option configures a Mediator.
type Option func(*Mediator)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(m *Mediator) {
		m.logger = log
	}
}

// NewMediator creates an empty mediator.
func NewMediator(opts ...Option) *Mediator {
	m := &Mediator{
		commands:             make(map[reflect.Type]invoker),
		commandsWithResponse: make(map[reflect.Type]invoker),
		queries:              make(map[reflect.Type]invoker),
		logger:               logger.Global(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("cqrs.mediator")
	return m
}

// AddPipelineBehavior appends a behavior to the pipeline. Behaviors
// wrap handler execution in registration order: the first added is the
// outermost.
func (m *Mediator) AddPipelineBehavior(b Behavior) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.behaviors = append(m.behaviors, b)
}

// RegisterCommandHandler binds the command type C to its handler.
// Registering a second handler for the same type replaces the first and
// logs a warning.
func RegisterCommandHandler[C any](m *Mediator, h CommandHandler[C]) error {
	if h == nil {
		return &RegistrationError{RequestType: typeName[C](), Reason: "handler is nil"}
	}
	inv := func(ctx context.Context, payload any) (any, error) {
		cmd, ok := payload.(C)
		if !ok {
			return nil, errx.New("command payload type mismatch", errx.WithDetails(errx.D{
				"expected": typeName[C](),
			}))
		}
		return nil, h.Handle(ctx, cmd)
	}
	m.register(m.commands, typeOf[C](), inv, "command")
	return nil
}

// RegisterCommandWithResponseHandler binds the command type C to its
// handler. Last registration wins.
func RegisterCommandWithResponseHandler[C, R any](m *Mediator, h CommandWithResponseHandler[C, R]) error {
	if h == nil {
		return &RegistrationError{RequestType: typeName[C](), Reason: "handler is nil"}
	}
	inv := func(ctx context.Context, payload any) (any, error) {
		cmd, ok := payload.(C)
		if !ok {
			return nil, errx.New("command payload type mismatch", errx.WithDetails(errx.D{
				"expected": typeName[C](),
			}))
		}
		return h.Handle(ctx, cmd)
	}
	m.register(m.commandsWithResponse, typeOf[C](), inv, "command_with_response")
	return nil
}

// RegisterQueryHandler binds the query type Q to its handler. Last
// registration wins.
func RegisterQueryHandler[Q, R any](m *Mediator, h QueryHandler[Q, R]) error {
	if h == nil {
		return &RegistrationError{RequestType: typeName[Q](), Reason: "handler is nil"}
	}
	inv := func(ctx context.Context, payload any) (any, error) {
		qry, ok := payload.(Q)
		if !ok {
			return nil, errx.New("query payload type mismatch", errx.WithDetails(errx.D{
				"expected": typeName[Q](),
			}))
		}
		return h.Handle(ctx, qry)
	}
	m.register(m.queries, typeOf[Q](), inv, "query")
	return nil
}

func (m *Mediator) register(table map[reflect.Type]invoker, t reflect.Type, inv invoker, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := table[t]; exists {
		m.logger.
			With("request_type", t.String()).
			With("kind", kind).
			Warn("handler registration replaced an existing handler")
	}
	table[t] = inv
}

// SendCommand dispatches a command that returns no response.
func (m *Mediator) SendCommand(ctx context.Context, cmd any) error {
	_, err := m.dispatch(ctx, KindCommand, cmd)
	return err
}

// SendCommandWithResponse dispatches a command and returns its response.
func (m *Mediator) SendCommandWithResponse(ctx context.Context, cmd any) (any, error) {
	return m.dispatch(ctx, KindCommandWithResponse, cmd)
}

// SendQuery dispatches a query and returns its result.
func (m *Mediator) SendQuery(ctx context.Context, qry any) (any, error) {
	return m.dispatch(ctx, KindQuery, qry)
}

func (m *Mediator) dispatch(ctx context.Context, kind Kind, payload any) (any, error) {
	req := newRequest(kind, payload)

	m.mu.RLock()
	inv, found := m.table(kind)[reflect.TypeOf(payload)]
	behaviors := make([]Behavior, len(m.behaviors))
	copy(behaviors, m.behaviors)
	m.mu.RUnlock()

	if !found {
		return nil, &HandlerNotFoundError{RequestType: req.Name()}
	}

	next := Next(func(ctx context.Context) (any, error) {
		return inv(ctx, payload)
	})
	// Fold behaviors from the innermost out so the first registered
	// behavior observes the request first.
	for i := len(behaviors) - 1; i >= 0; i-- {
		b := behaviors[i]
		inner := next
		next = func(ctx context.Context) (any, error) {
			return b.Handle(ctx, req, inner)
		}
	}

	result, err := next(ctx)
	if err != nil {
		var notFound *HandlerNotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		var pipelineErr *PipelineExecutionError
		if errors.As(err, &pipelineErr) {
			return nil, err
		}
		return nil, &PipelineExecutionError{
			RequestType: req.Name(),
			Phase:       kind.Phase(),
			Err:         err,
		}
	}
	return result, nil
}

func (m *Mediator) table(kind Kind) map[reflect.Type]invoker {
	switch kind {
	case KindCommand:
		return m.commands
	case KindCommandWithResponse:
		return m.commandsWithResponse
	default:
		return m.queries
	}
}

// Execute dispatches a command with response and asserts the response type.
func Execute[R any](ctx context.Context, m *Mediator, cmd any) (R, error) {
	res, err := m.SendCommandWithResponse(ctx, cmd)
	if err != nil {
		var zero R
		return zero, err
	}
	typed, ok := res.(R)
	if !ok {
		var zero R
		return zero, errx.New("unexpected command response type", errx.WithDetails(errx.D{
			"expected": typeName[R](),
		}))
	}
	return typed, nil
}

// Query dispatches a query and asserts the result type.
func Query[R any](ctx context.Context, m *Mediator, qry any) (R, error) {
	res, err := m.SendQuery(ctx, qry)
	if err != nil {
		var zero R
		return zero, err
	}
	typed, ok := res.(R)
	if !ok {
		var zero R
		return zero, errx.New("unexpected query result type", errx.WithDetails(errx.D{
			"expected": typeName[R](),
		}))
	}
	return typed, nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func typeName[T any]() string {
	t := typeOf[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
