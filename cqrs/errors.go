package cqrs

import (
	"errors"
	"fmt"
	"strings"
)

// Stable error codes for the dispatch error taxonomy. Callers branch on
// these via CodeOf instead of matching error strings.
const (
	CodeHandlerNotFound     = "HANDLER_NOT_FOUND"
	CodePipelineExecution   = "PIPELINE_EXECUTION_FAILED"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeAuthorizationFailed = "AUTHORIZATION_FAILED"
	CodeTransactionFailed   = "TRANSACTION_FAILED"
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	CodeCircuitBreakerOpen  = "CIRCUIT_BREAKER_OPEN"
	CodeRegistrationFailed  = "HANDLER_REGISTRATION_FAILED"
)

// coder is implemented by every error type in this package.
type coder interface {
	Code() string
}

// CodeOf returns the stable code of the outermost coded error in err's
// chain, or an empty string for foreign errors.
func CodeOf(err error) string {
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// HandlerNotFoundError reports a dispatch for which no handler was
// registered. It is never wrapped into a PipelineExecutionError, so
// callers can always detect it directly with errors.As.
type HandlerNotFoundError struct {
	RequestType string
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler registered for request type %s", e.RequestType)
}

func (e *HandlerNotFoundError) Code() string { return CodeHandlerNotFound }

// PipelineExecutionError wraps any failure raised by a behavior or a
// handler during dispatch. The original cause is available via Unwrap.
type PipelineExecutionError struct {
	RequestType string
	Phase       string
	Err         error
}

func (e *PipelineExecutionError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Phase, e.RequestType, e.Err)
}

func (e *PipelineExecutionError) Unwrap() error { return e.Err }

func (e *PipelineExecutionError) Code() string { return CodePipelineExecution }

// ValidationError reports a request rejected before reaching its handler.
type ValidationError struct {
	RequestType string
	Violations  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.RequestType, strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Code() string { return CodeValidationFailed }

// AuthorizationError reports a request from an unauthenticated or
// under-privileged caller.
type AuthorizationError struct {
	RequestType        string
	UserID             string
	RequiredPermission string
}

func (e *AuthorizationError) Error() string {
	if e.UserID == "" {
		return fmt.Sprintf("authentication required for %s", e.RequestType)
	}
	if e.RequiredPermission != "" {
		return fmt.Sprintf("user %s lacks permission %s for %s", e.UserID, e.RequiredPermission, e.RequestType)
	}
	return fmt.Sprintf("user %s is not authorized for %s", e.UserID, e.RequestType)
}

func (e *AuthorizationError) Code() string { return CodeAuthorizationFailed }

// TransactionError reports a failed transaction operation around a
// command. Operation is one of "begin", "commit" or "rollback".
type TransactionError struct {
	RequestType string
	Operation   string
	Err         error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed for %s: %v", e.Operation, e.RequestType, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func (e *TransactionError) Code() string { return CodeTransactionFailed }

// RateLimitExceededError reports a request rejected by the rate limiter.
type RateLimitExceededError struct {
	Key   string
	Limit int
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %q: %d requests per minute", e.Key, e.Limit)
}

func (e *RateLimitExceededError) Code() string { return CodeRateLimitExceeded }

// CircuitBreakerOpenError reports a request short-circuited by an open
// breaker.
type CircuitBreakerOpenError struct {
	Key       string
	Failures  int
	Threshold int
}

func (e *CircuitBreakerOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open for %q: %d/%d failures", e.Key, e.Failures, e.Threshold)
}

func (e *CircuitBreakerOpenError) Code() string { return CodeCircuitBreakerOpen }

// RegistrationError reports an invalid handler registration.
type RegistrationError struct {
	RequestType string
	Reason      string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register handler for %s: %s", e.RequestType, e.Reason)
}

func (e *RegistrationError) Code() string { return CodeRegistrationFailed }
