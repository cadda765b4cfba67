// Package errors defines the application error type returned by HTTP
// handlers, carrying the status code and the message shown to the auditor.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"auditserver/tabular"
)

// AppError is an application error with an HTTP status and user context.
type AppError struct {
	Code    int    `json:"status_code"` // HTTP status code
	Message string `json:"message"`     // message shown to the user
	Err     error  `json:"-"`           // wrapped cause, logs only
	Context string `json:"-"`           // extra context (handler, parameters)
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of the error.
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage returns the message shown to the user.
func (e *AppError) UserMessage() string {
	return e.Message
}

// WithContext attaches context to the error and returns it.
func (e *AppError) WithContext(context string) *AppError {
	e.Context = context
	return e
}

// NewValidationError creates a 400 Bad Request error.
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Err:     err,
	}
}

// NewTooManyRequestsError creates a 429 Too Many Requests error.
func NewTooManyRequestsError(message string) *AppError {
	return &AppError{
		Code:    http.StatusTooManyRequests,
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error. The user sees a
// generic message; the detail goes to the logs only.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
		Err:     errors.Join(errors.New(message), err),
	}
}

// FromPipeline converts a criterion pipeline error into an AppError. Data
// problems in the uploaded extracts are the auditor's to fix and map to 400
// with the full reason; anything else is a server fault.
func FromPipeline(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var schemaErr *tabular.SchemaError
	if errors.As(err, &schemaErr) {
		return NewValidationError(schemaErr.Error(), err)
	}
	var validationErr *tabular.ValidationError
	if errors.As(err, &validationErr) {
		return NewValidationError(validationErr.Error(), err)
	}
	var readErr *tabular.SourceReadError
	if errors.As(err, &readErr) {
		return NewValidationError(readErr.Error(), err)
	}
	return NewInternalError("criterion run failed", err)
}
