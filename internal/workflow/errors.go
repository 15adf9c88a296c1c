package workflow

import (
	"errors"
	"fmt"
)

// ErrorKind classifies orchestrator failures. Validation covers every
// malformed request, including out-of-sequence step execution; callers
// translate kinds to transport status codes.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindNotFound   ErrorKind = "not_found"
	ErrorKindInternal   ErrorKind = "internal"
)

// Error is the orchestrator's error type.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("workflow: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewInternalError(message string, cause error) *Error {
	return &Error{Kind: ErrorKindInternal, Message: message, Cause: cause}
}

// KindOf extracts the error kind, defaulting to internal for foreign
// errors.
func KindOf(err error) ErrorKind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ErrorKindInternal
}
