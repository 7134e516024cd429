package behavior

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/deeplines/buildingblocks/cqrs"
)

// Tracing starts an OpenTelemetry span per dispatch, named after the
// request type.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing creates the tracing behavior.
func NewTracing() *Tracing {
	return &Tracing{tracer: otel.Tracer("cqrs/pipeline")}
}

func (b *Tracing) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	ctx, span := b.tracer.Start(ctx, req.Name(),
		trace.WithAttributes(attribute.String("cqrs.phase", req.Kind().Phase())),
	)
	defer span.End()

	if rc := req.Context(); rc != nil {
		span.SetAttributes(attribute.String("cqrs.correlation_id", rc.CorrelationID.String()))
	}

	result, err := next(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return result, err
}
