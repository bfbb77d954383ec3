package faults

import (
	"context"
	"errors"
)

type ErrorCategory string

const (
	ValidationError           ErrorCategory = "ValidationError"
	NotFoundError             ErrorCategory = "NotFoundError"
	ConflictError             ErrorCategory = "ConflictError"
	ImmutableResourceError    ErrorCategory = "ImmutableResourceError"
	UnknownResourceTypeError  ErrorCategory = "UnknownResourceTypeError"
	DirectoryUnavailableError ErrorCategory = "DirectoryUnavailableError"
	TimeoutError              ErrorCategory = "TimeoutError"
	InternalError             ErrorCategory = "InternalError"
)

type TypedError struct {
	Category ErrorCategory
	Message  string
	Cause    error
}

func (e *TypedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Category)
}

func (e *TypedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewTypedError(category ErrorCategory, message string, cause error) *TypedError {
	return &TypedError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

func IsCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}

	var typedErr *TypedError
	if !errors.As(err, &typedErr) {
		return false
	}
	return typedErr.Category == category
}

// CategoryOf returns the category of the outermost typed error in the chain,
// or InternalError for untyped errors.
func CategoryOf(err error) ErrorCategory {
	var typedErr *TypedError
	if errors.As(err, &typedErr) {
		return typedErr.Category
	}
	return InternalError
}

// FromContext maps an expired or canceled context to a TimeoutError. It
// returns nil when err is not a context error.
func FromContext(message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTypedError(TimeoutError, message, err)
	}
	return nil
}
