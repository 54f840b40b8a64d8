// Package apperrors defines the errors the HTTP layer knows how to map.
package apperrors

import "errors"

// Authentication and user errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Request errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Student errors
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrInvalidStudentID = errors.New("invalid student ID format")
	ErrDuplicateSerial  = errors.New("serial number already exists")
	ErrRevisionConflict = errors.New("student was modified concurrently")
	ErrInvalidYear      = errors.New("invalid admission year")
)

// Collaborator errors
var (
	ErrUploadFailed = errors.New("media upload failed")
	ErrRenderFailed = errors.New("document rendering failed")
)

// CustomError attaches a client-facing message and optional field details to a
// sentinel. errors.Is sees through it.
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps ErrValidationFailed with a message and per-field details
func NewValidationError(message string, details map[string]interface{}) error {
	return &CustomError{Err: ErrValidationFailed, Message: message, Details: details}
}

// NewBadRequestError wraps ErrBadRequest with a message
func NewBadRequestError(message string) error {
	return &CustomError{Err: ErrBadRequest, Message: message}
}
