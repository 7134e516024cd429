package outbox

import "time"

// PublisherConfig configures the background publisher loop.
type PublisherConfig struct {
	PollingInterval time.Duration `yaml:"polling_interval" default:"5s"`
	BatchSize       int           `yaml:"batch_size"       default:"100"`
	StopTimeout     time.Duration `yaml:"stop_timeout"     default:"10s"`
}

// CleanerConfig configures retention cleanup of published rows.
type CleanerConfig struct {
	// Schedule is a standard cron expression.
	Schedule      string `yaml:"schedule"       default:"0 3 * * *"`
	RetentionDays int    `yaml:"retention_days" default:"7"`
}
