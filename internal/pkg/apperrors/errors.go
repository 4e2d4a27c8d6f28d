// Package apperrors defines the error kinds the HTTP layer maps to status
// codes. Services return a *CustomError carrying one of the kinds below.
package apperrors

import "errors"

// Error kinds surfaced at the API boundary
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("permission denied")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidAction     = errors.New("invalid action")
	ErrValidationFailed  = errors.New("validation failed")
	ErrConflictInvariant = errors.New("conflict")
	ErrActionFailed      = errors.New("action failed")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

func NewNotFoundError(message string) error      { return NewCustomError(ErrNotFound, message) }
func NewUnauthorizedError(message string) error  { return NewCustomError(ErrUnauthorized, message) }
func NewInvalidStateError(message string) error  { return NewCustomError(ErrInvalidState, message) }
func NewInvalidActionError(message string) error { return NewCustomError(ErrInvalidAction, message) }
func NewValidationError(message string) error    { return NewCustomError(ErrValidationFailed, message) }
func NewConflictError(message string) error      { return NewCustomError(ErrConflictInvariant, message) }

// NewActionFailedError wraps the failure of an approval handler. The cause stays
// reachable through errors.Is / errors.As.
func NewActionFailedError(message string, cause error) error {
	e := NewCustomError(ErrActionFailed, message)
	e.Cause = cause
	return e
}

// CustomError pairs an error kind with a client-facing message
type CustomError struct {
	Err     error
	Cause   error
	Message string
	Details map[string]interface{}
}

func NewCustomError(kind error, message string) *CustomError {
	return &CustomError{Err: kind, Message: message}
}

func (e *CustomError) Error() string {
	msg := e.Message
	switch {
	case msg != "":
	case e.Err != nil:
		msg = e.Err.Error()
	default:
		msg = "unknown error"
	}
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

// Unwrap exposes both the kind and the cause
func (e *CustomError) Unwrap() []error {
	var errs []error
	for _, err := range []error{e.Err, e.Cause} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// WithDetails attaches structured context rendered under error.details
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// MessageOf returns the human-readable message of err, preferring the
// CustomError message over the wrapped chain.
func MessageOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return err.Error()
}
