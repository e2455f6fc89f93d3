// internal/services/errors.go
package services

import (
	"errors"
)

// ErrorKind classifies a service failure. Transport layers pick status codes from it.
type ErrorKind int

const (
	ErrKindInternal ErrorKind = iota
	ErrKindValidation
	ErrKindNotFound
	ErrKindConflict
	ErrKindUpload
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindValidation:
		return "validation"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConflict:
		return "conflict"
	case ErrKindUpload:
		return "upload"
	default:
		return "internal"
	}
}

// Error is returned by every service operation that fails. Message is safe
// to show to callers; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err. Errors not produced by this package are internal.
func KindOf(err error) ErrorKind {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	return ErrKindInternal
}

func validationError(message string) error {
	return &Error{Kind: ErrKindValidation, Message: message}
}

func notFoundError(message string) error {
	return &Error{Kind: ErrKindNotFound, Message: message}
}

func conflictError(message string, cause error) error {
	return &Error{Kind: ErrKindConflict, Message: message, Err: cause}
}

func uploadError(cause error) error {
	return &Error{Kind: ErrKindUpload, Message: "asset upload failed", Err: cause}
}

func internalError(message string, cause error) error {
	return &Error{Kind: ErrKindInternal, Message: message, Err: cause}
}
