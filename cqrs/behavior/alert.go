package behavior

import (
	"context"
	"fmt"
	"time"

	"github.com/code19m/errx"

	"github.com/deeplines/buildingblocks/alert"
	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
	"github.com/deeplines/buildingblocks/meta"
)

const alertTimeout = 3 * time.Second

// Alert sends failed dispatches to the alert provider without blocking
// the caller. The error itself is re-raised unchanged.
type Alert struct {
	logger        logger.Logger
	alertProvider alert.Provider
}

// NewAlert creates the alerting behavior.
func NewAlert(log logger.Logger, alertProvider alert.Provider) *Alert {
	return &Alert{
		logger:        log.Named("cqrs.pipeline.alert"),
		alertProvider: alertProvider,
	}
}

func (b *Alert) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	result, err := next(ctx)
	if err == nil {
		return result, nil
	}

	e := errx.AsErrorX(err)

	operation := fmt.Sprintf("%s: %s", req.Kind().Phase(), req.Name())
	details := make(map[string]string)
	for k, v := range meta.Extract(ctx) {
		details[string(k)] = v
	}
	if rc := req.Context(); rc != nil {
		details["correlation_id"] = rc.CorrelationID.String()
	}

	newCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)

	go func() {
		defer cancel()

		sendErr := b.alertProvider.SendError(newCtx, e.Code(), err.Error(), operation, details)
		if sendErr != nil {
			b.logger.With("alert_send_error", sendErr).Warn("failed to send error alert")
		}
	}()

	return result, err
}
