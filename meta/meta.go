// Package meta provides functionality for managing request metadata through context.
package meta

import "context"

// ContextKey is a type for keys used in context values for metadata.
type ContextKey string

const (
	// CorrelationID is the identifier threaded through a request and the
	// domain events it produces.
	CorrelationID ContextKey = "correlation_id"

	// RequestUserID identifies the user making the request.
	RequestUserID ContextKey = "request_user_id"

	// RequestUserRole indicates the current role of the user making the request.
	RequestUserRole ContextKey = "request_user_role"

	// WorkspaceID identifies the workspace the request operates on.
	WorkspaceID ContextKey = "workspace_id"

	// ServiceName identifies the name of the current running service.
	ServiceName ContextKey = "service_name"

	// ServiceVersion indicates the version of the service.
	ServiceVersion ContextKey = "service_version"
)

// allKeys lists every key Extract inspects.
//
//nolint:gochecknoglobals // static lookup table
var allKeys = []ContextKey{
	CorrelationID,
	RequestUserID,
	RequestUserRole,
	WorkspaceID,
	ServiceName,
	ServiceVersion,
}

// Inject adds metadata from the provided map to the context.
// It only adds values that are not empty strings and returns a new context
// with the added values.
func Inject(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // finite number of keys
		}
	}
	return ctx
}

// Extract retrieves values for all predefined context keys and returns them
// in a map. Only non-empty string values are included.
func Extract(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string)
	for _, k := range allKeys {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			data[k] = v
		}
	}
	return data
}

// Find returns the value for a single key, or the empty string when unset.
func Find(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
