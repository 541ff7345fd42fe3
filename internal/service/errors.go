package service

import "errors"

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrTooLarge     = errors.New("too large")
	ErrUnsupported  = errors.New("unsupported media")
	ErrStore        = errors.New("store failed")
	ErrInternal     = errors.New("internal")
)

// ServiceError wraps a sentinel error with a specific code and message for the handler to use.
type ServiceError struct {
	Err     error
	Code    string
	Message string
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

// NewError creates a ServiceError wrapping the given sentinel.
func NewError(sentinel error, code, message string) *ServiceError {
	return &ServiceError{Err: sentinel, Code: code, Message: message}
}

// Convenience constructors for common error types.

func BadRequest(code, message string) *ServiceError {
	return NewError(ErrBadRequest, code, message)
}

func Unauthorized(code, message string) *ServiceError {
	return NewError(ErrUnauthorized, code, message)
}

func Forbidden(code, message string) *ServiceError {
	return NewError(ErrForbidden, code, message)
}

func NotFound(code, message string) *ServiceError {
	return NewError(ErrNotFound, code, message)
}

func TooLarge(code, message string) *ServiceError {
	return NewError(ErrTooLarge, code, message)
}

func Unsupported(code, message string) *ServiceError {
	return NewError(ErrUnsupported, code, message)
}

func StoreFailed(message string) *ServiceError {
	return NewError(ErrStore, "STORE_FAILED", message)
}

func Internal(code, message string) *ServiceError {
	return NewError(ErrInternal, code, message)
}
