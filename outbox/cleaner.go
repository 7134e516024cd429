package outbox

import (
	"context"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
	"github.com/deeplines/buildingblocks/uow"
)

// Cleaner deletes published rows past retention on a cron schedule.
type Cleaner struct {
	cfg      CleanerConfig
	mediator *cqrs.Mediator
	db       *bun.DB
	logger   logger.Logger
	cron     *cron.Cron
}

// NewCleaner creates a cleaner. Zero config fields fall back to their
// defaults.
func NewCleaner(cfg CleanerConfig, m *cqrs.Mediator, db *bun.DB, log logger.Logger) (*Cleaner, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, errx.Wrap(err)
	}

	return &Cleaner{
		cfg:      cfg,
		mediator: m,
		db:       db,
		logger:   log.Named("outbox.cleaner"),
		cron:     cron.New(),
	}, nil
}

// Start schedules the cleanup job and returns immediately.
func (c *Cleaner) Start() error {
	_, err := c.cron.AddFunc(c.cfg.Schedule, c.run)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{
			"schedule": c.cfg.Schedule,
		}))
	}
	c.cron.Start()
	c.logger.With("schedule", c.cfg.Schedule).Info("outbox cleaner started")
	return nil
}

// Stop cancels the schedule and waits for a running job to finish.
func (c *Cleaner) Stop() {
	<-c.cron.Stop().Done()
	c.logger.Info("outbox cleaner stopped")
}

// Run triggers one cleanup immediately.
func (c *Cleaner) Run() {
	c.run()
}

func (c *Cleaner) run() {
	ctx := context.Background()

	cmd := &CleanupPublishedEventsCommand{OlderThanDays: c.cfg.RetentionDays}
	cmd.UnitOfWork = uow.New(c.db)

	if err := c.mediator.SendCommand(ctx, cmd); err != nil {
		c.logger.Errorx(err)
		return
	}
	c.logger.With("retention_days", c.cfg.RetentionDays).Info("outbox cleanup completed")
}
