package tracing

import "time"

const reconnectionPeriod = 30 * time.Second

// Config holds the configuration for the tracing system.
type Config struct {
	// Disable, if true, completely disables tracing.
	Disable bool `yaml:"disable" default:"false"`

	// SampleRate is the trace sampling fraction between 0.0 and 1.0.
	SampleRate float64 `yaml:"sample_rate" default:"1"`

	// ExporterHost and ExporterPort address the OTLP collector.
	ExporterHost string `yaml:"exporter_host" validate:"required"`
	ExporterPort int    `yaml:"exporter_port" validate:"required"`

	// Tags are added as resource attributes to every span.
	Tags map[string]string `yaml:"tags"`
}
