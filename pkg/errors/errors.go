package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	// Precondition errors
	ErrorTypeNotReady        ErrorType = "NOT_READY"
	ErrorTypeInvalidSelector ErrorType = "INVALID_SELECTOR"
	ErrorTypeMissingKey      ErrorType = "MISSING_KEY"
	ErrorTypeNoChanges       ErrorType = "NO_CHANGES"
	ErrorTypeValidation      ErrorType = "VALIDATION"

	// Auth errors
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"

	// Infrastructure errors
	ErrorTypeStore              ErrorType = "STORE"
	ErrorTypeHashingUnavailable ErrorType = "HASHING_UNAVAILABLE"
	ErrorTypeInternal           ErrorType = "INTERNAL"
)

// AppError is the error type returned across package boundaries.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds error details.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// NewNotReadyError signals that store connectivity has not been confirmed.
func NewNotReadyError() *AppError {
	return &AppError{
		Type:       ErrorTypeNotReady,
		Message:    "store connection is not ready",
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewInvalidSelectorError signals a lookup with no usable selector.
func NewInvalidSelectorError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidSelector,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewMissingKeyError signals an update without a primary key.
func NewMissingKeyError() *AppError {
	return &AppError{
		Type:       ErrorTypeMissingKey,
		Message:    "primary key is required",
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNoChangesError signals an update with an empty change set.
func NewNoChangesError() *AppError {
	return &AppError{
		Type:       ErrorTypeNoChanges,
		Message:    "change set is empty",
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUnauthorizedError creates an unauthorized error.
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return &AppError{
		Type:       ErrorTypeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewStoreError wraps a failure surfaced by the external store. The cause is
// carried as-is, never interpreted.
func NewStoreError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeStore,
		Message:    fmt.Sprintf("store operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
	}
}

// NewHashingUnavailableError signals missing salt configuration.
func NewHashingUnavailableError() *AppError {
	return &AppError{
		Type:       ErrorTypeHashingUnavailable,
		Message:    "password hashing salt material is not configured",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type.
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotReady reports the readiness precondition failure.
func IsNotReady(err error) bool {
	return IsType(err, ErrorTypeNotReady)
}

// IsInvalidSelector reports a selector precondition failure.
func IsInvalidSelector(err error) bool {
	return IsType(err, ErrorTypeInvalidSelector)
}

// IsMissingKey reports an update issued without a key.
func IsMissingKey(err error) bool {
	return IsType(err, ErrorTypeMissingKey)
}

// IsNoChanges reports an update issued with an empty change set.
func IsNoChanges(err error) bool {
	return IsType(err, ErrorTypeNoChanges)
}

// IsStore reports a wrapped store failure.
func IsStore(err error) bool {
	return IsType(err, ErrorTypeStore)
}

// IsValidation reports a validation error.
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsHashingUnavailable reports missing salt configuration.
func IsHashingUnavailable(err error) bool {
	return IsType(err, ErrorTypeHashingUnavailable)
}
