package behavior

import (
	"context"
	"fmt"
	"runtime"

	"github.com/code19m/errx"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
)

// Recovery converts panics in downstream behaviors or handlers into
// errors so a single misbehaving request cannot crash the process.
type Recovery struct {
	logger logger.Logger
}

// NewRecovery creates the recovery behavior.
func NewRecovery(log logger.Logger) *Recovery {
	return &Recovery{logger: log.Named("cqrs.pipeline.recovery")}
}

func (b *Recovery) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			stackTrace := make([]byte, 4096) // 4KB
			stackTrace = stackTrace[:runtime.Stack(stackTrace, false)]

			b.logger.
				WithContext(ctx).
				With("request_name", req.Name()).
				With("stack_trace", string(stackTrace)).
				With("panic_values", fmt.Sprintf("%v", r)).
				Error("panic recovered in pipeline")

			err = errx.New("panic recovered in pipeline", errx.WithDetails(errx.D{
				"request_name": req.Name(),
				"stack_trace":  string(stackTrace),
				"panic_values": fmt.Sprintf("%v", r),
			}))
		}
	}()

	result, err = next(ctx)
	return result, err
}
