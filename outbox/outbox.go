// Package outbox implements the transactional outbox: domain events are
// persisted in the same unit of work as the command that produced them,
// then drained to the message bus by a background publisher.
//
// The store is exposed as mediator commands and queries so outbox writes
// flow through the same pipeline as every other request. Atomicity of
// "business change + event row" holds only when the pipeline composes
// the transaction behavior outside the outbox behavior, sharing one
// unit of work and one commit.
package outbox
