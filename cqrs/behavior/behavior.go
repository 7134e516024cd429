// Package behavior provides the pipeline behaviors wrapped around
// command and query execution: validation, logging, authorization,
// transactions, caching, rate limiting, circuit breaking, panic
// recovery, tracing and alerting.
//
// Each behavior is a capability check. It inspects the request's
// context and payload and passes through unchanged when the request
// does not carry the corresponding capability.
package behavior
