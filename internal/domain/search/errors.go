package search

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a search failure. The categories are
// distinguishable so callers can apply different backoff policies.
type ErrorType string

const (
	// ErrorTypeEngine covers transport and parse failures, and orchestrator
	// aggregate failures.
	ErrorTypeEngine ErrorType = "ENGINE"
	// ErrorTypeRateLimit means the adapter's local limiter declined the call
	// before any network I/O.
	ErrorTypeRateLimit ErrorType = "RATE_LIMIT"
	// ErrorTypeQuota means the provider itself reported quota exhaustion
	// (HTTP 429 or a quota-specific error body).
	ErrorTypeQuota ErrorType = "QUOTA"
	// ErrorTypeConfig is a construction-time misconfiguration: missing
	// credential, missing required extra param, unknown engine type.
	ErrorTypeConfig ErrorType = "CONFIG"
)

// EngineError is the error produced by adapters and the orchestrator.
type EngineError struct {
	Engine  EngineType
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Engine, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Engine, e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a generic engine failure.
func NewEngineError(engine EngineType, message string, err error) *EngineError {
	return &EngineError{Engine: engine, Type: ErrorTypeEngine, Message: message, Err: err}
}

// NewRateLimitError creates a local rate-limit rejection.
func NewRateLimitError(engine EngineType, message string) *EngineError {
	return &EngineError{Engine: engine, Type: ErrorTypeRateLimit, Message: message}
}

// NewQuotaError creates a provider-reported quota exhaustion failure.
func NewQuotaError(engine EngineType, message string, err error) *EngineError {
	return &EngineError{Engine: engine, Type: ErrorTypeQuota, Message: message, Err: err}
}

// NewConfigError creates a construction-time misconfiguration failure.
func NewConfigError(engine EngineType, message string) *EngineError {
	return &EngineError{Engine: engine, Type: ErrorTypeConfig, Message: message}
}

// IsErrorType checks whether err is an EngineError of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Type == errorType
	}
	return false
}
