package behavior

import (
	"context"
	"time"

	"github.com/code19m/errx"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
)

// LoggingConfig configures the logging behavior.
type LoggingConfig struct {
	// LogStart emits a debug entry before the pipeline continues.
	LogStart bool `yaml:"log_start"`

	// SlowThreshold triggers a warning when execution takes longer.
	SlowThreshold time.Duration `yaml:"slow_threshold" default:"500ms"`
}

// Logging records every dispatch with its execution time. Errors are
// re-raised unchanged.
type Logging struct {
	cfg    LoggingConfig
	logger logger.Logger
}

// NewLogging creates the logging behavior.
func NewLogging(cfg LoggingConfig, log logger.Logger) *Logging {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = 500 * time.Millisecond
	}
	return &Logging{
		cfg:    cfg,
		logger: log.Named("cqrs.pipeline.logging"),
	}
}

func (b *Logging) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	log := b.logger.
		WithContext(ctx).
		With("request_name", req.Name()).
		With("phase", req.Kind().Phase())

	if rc := req.Context(); rc != nil {
		log = log.With("correlation_id", rc.CorrelationID.String())
	}

	if b.cfg.LogStart {
		log.Debug("request started")
	}

	start := time.Now()
	result, err := next(ctx)
	duration := time.Since(start)

	log = log.With("execution_time", duration.String())

	switch {
	case err != nil:
		e := errx.AsErrorX(err)
		log.With("error", map[string]any{
			"code":    e.Code(),
			"message": e.Error(),
			"type":    e.Type().String(),
			"details": e.Details(),
		}).Error("request failed")
	case duration > b.cfg.SlowThreshold:
		log.With("slow_threshold", b.cfg.SlowThreshold.String()).Warn("slow request")
	default:
		log.Info("request completed")
	}

	return result, err
}
