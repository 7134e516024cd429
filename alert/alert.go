// Package alert defines the error-alerting port used by pipeline behaviors
// and background workers. Concrete providers (Telegram, Discord, pager
// integrations) live in the services that embed this library.
package alert

import "context"

// Provider defines the interface for sending error alerts.
// Implementations of this interface can send alerts to various monitoring systems.
type Provider interface {
	// SendError sends an error alert with the given details.
	// errCode is a specific code identifying the error.
	// msg is a human-readable error message.
	// operation describes the operation during which the error occurred.
	// details is a map of additional key-value pairs providing more context.
	SendError(ctx context.Context, errCode, msg, operation string, details map[string]string) error
}

// NoopProvider is a Provider that silently drops all alerts.
type NoopProvider struct{}

// NewNoopProvider returns a Provider that does nothing.
func NewNoopProvider() Provider {
	return NoopProvider{}
}

func (NoopProvider) SendError(context.Context, string, string, string, map[string]string) error {
	return nil
}
