package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("conflict")

// ErrForbidden indicates that the actor's role lacks the capability for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected failure in a dependency.
var ErrInternal = errors.New("internal error")

// ErrConfiguration indicates that the tenant's chart of accounts or mappings cannot serve the request.
var ErrConfiguration = errors.New("configuration error")

// ErrPartialWrite indicates that a multi-row write was interrupted and may have left rows behind.
var ErrPartialWrite = errors.New("partial write")

// AppError wraps an underlying error with an HTTP-ish status code and a message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// ConfigurationError reports the convention accounts an intent needs but the tenant lacks.
// The message is meant for operators, so it names the codes and how to fix them.
type ConfigurationError struct {
	Intent       string
	MissingCodes []string
	Remediation  string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("cannot post %s: chart of accounts is missing account code(s) %s",
		e.Intent, strings.Join(e.MissingCodes, ", "))
	if e.Remediation != "" {
		msg += ". " + e.Remediation
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
