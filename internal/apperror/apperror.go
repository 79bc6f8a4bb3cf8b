package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials covers both "unknown email" and "wrong
	// password". The two are never distinguished in anything a client
	// can observe, so account existence cannot be probed via login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateRegistration means the email is already registered.
	ErrDuplicateRegistration = errors.New("already registered")
	// ErrHashFormat means a stored password hash is malformed. This is
	// a data corruption signal, not a user error — it is logged as
	// fatal for the request.
	ErrHashFormat = errors.New("malformed password hash")
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
)

type AppError struct {
	Err     error  // sentinel cause
	Message string // human-readable error message
	Field   string // optional: form field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with key %s", resource, key),
	}
}

// InvalidCredentials returns the single, deliberately vague login
// failure. Callers must not append detail that would reveal whether the
// account exists.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Incorrect email or password.",
	}
}

func DuplicateRegistration(email string) *AppError {
	return &AppError{
		Err:     ErrDuplicateRegistration,
		Message: fmt.Sprintf("An account with the email %s already exists.", email),
		Field:   "email",
	}
}

func HashFormat(cause error) *AppError {
	return &AppError{
		Err:     ErrHashFormat,
		Message: fmt.Sprintf("stored credential is unreadable: %v", cause),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
