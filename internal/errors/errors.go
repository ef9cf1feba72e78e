package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Base error types
var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrStoreTimeout     = errors.New("store timeout")
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeUnavailable  ErrorType = "store_unavailable"
	ErrorTypeTimeout      ErrorType = "store_timeout"
	ErrorTypeBadRequest   ErrorType = "bad_request"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeNotFound     ErrorType = "not_found"
)

// QueryError is a structured error for store and engine operations
type QueryError struct {
	Type       ErrorType
	Op         string // Operation that failed (e.g., "pivot_aggregate", "status_find")
	Database   string // Database name where the error occurred
	Collection string // Collection name if applicable
	Err        error  // Underlying error
	Timestamp  time.Time
}

func (e *QueryError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("%s failed on %s.%s: %v", e.Op, e.Database, e.Collection, e.Err)
	}
	if e.Database != "" {
		return fmt.Sprintf("%s failed on %s: %v", e.Op, e.Database, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is interface
func (e *QueryError) Is(target error) bool {
	if target == nil {
		return false
	}

	switch target {
	case ErrStoreUnavailable:
		return e.Type == ErrorTypeUnavailable
	case ErrStoreTimeout:
		return e.Type == ErrorTypeTimeout
	case ErrBadRequest:
		return e.Type == ErrorTypeBadRequest
	case ErrUnauthorized:
		return e.Type == ErrorTypeUnauthorized
	case ErrNotFound:
		return e.Type == ErrorTypeNotFound
	}

	return errors.Is(e.Err, target)
}

// NewQueryError creates a new QueryError
func NewQueryError(errorType ErrorType, op string, err error) *QueryError {
	return &QueryError{
		Type:      errorType,
		Op:        op,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// WithNamespace adds the database and collection the operation was running against
func (e *QueryError) WithNamespace(database, collection string) *QueryError {
	e.Database = database
	e.Collection = collection
	return e
}

// WrapStoreError classifies a driver error as timeout or unavailability.
// Context cancellation passes through untouched so callers can tell a client
// disconnect from a store failure.
func WrapStoreError(op, database, collection string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	errorType := ErrorTypeUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		errorType = ErrorTypeTimeout
	}
	return NewQueryError(errorType, op, err).WithNamespace(database, collection)
}

// TypeOf returns the category of err, or ErrorTypeUnavailable for anything
// unclassified (store faults are the conservative default for a read path).
func TypeOf(err error) ErrorType {
	var qErr *QueryError
	if errors.As(err, &qErr) {
		return qErr.Type
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	return ErrorTypeUnavailable
}

// IsTimeout checks if an error is a deadline failure
func IsTimeout(err error) bool {
	return errors.Is(err, ErrStoreTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsUnavailable checks if an error is a store connectivity failure
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsCancellation reports whether err stems from the caller going away rather
// than from the store.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
