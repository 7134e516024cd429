// Package cqrs provides Command Query Responsibility Segregation (CQRS) pattern implementation.
//
// This package defines a mediator that routes commands and queries to their
// registered handlers, together with a behavior pipeline for cross-cutting
// concerns such as validation, logging, authorization, transactions, caching
// and resilience. Commands represent operations that change state; queries
// represent reads. Every request type is owned by exactly one handler.
package cqrs
