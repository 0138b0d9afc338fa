package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:       "NOT_FOUND",
		StatusCode: http.StatusNotFound,
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewStorageError creates a new error for a failed local storage operation
func NewStorageError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorage,
		Message: fmt.Sprintf("storage operation failed: %s", operation),
		Code:    "STORAGE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]interface{}{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// NewForbiddenError creates an error for a 403 response
func NewForbiddenError(operation string, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("permission denied for %s", operation)
	}
	return &AppError{
		Type:       ErrorTypeForbidden,
		Message:    message,
		Code:       "FORBIDDEN",
		StatusCode: http.StatusForbidden,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewNetworkError creates an error for a request that received no response
func NewNetworkError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeNetwork,
		Message: fmt.Sprintf("no response from server: %s", operation),
		Code:    "NETWORK_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewServerError creates an error for a 5xx (or 429) response
func NewServerError(operation string, status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("server error during %s", operation)
	}
	return &AppError{
		Type:       ErrorTypeServer,
		Message:    message,
		Code:       "SERVER_ERROR",
		StatusCode: status,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewAuthError creates an error for a 401 response or a missing session
func NewAuthError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Type:       ErrorTypeAuth,
		Message:    message,
		Code:       "UNAUTHORIZED",
		StatusCode: http.StatusUnauthorized,
		Context:    make(map[string]interface{}),
	}
}

// NewAPIError creates an error for any other non-2xx response. The message is
// the one provided by the server when present.
func NewAPIError(operation string, status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &AppError{
		Type:       ErrorTypeAPI,
		Message:    message,
		Code:       fmt.Sprintf("HTTP_%d", status),
		StatusCode: status,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// IsRetriable reports whether the error is a transient failure that the
// caller may offer to retry.
func IsRetriable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retriable()
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeInvalidInput:
			return appErr.Message
		case ErrorTypeNotFound:
			return "The requested resource was not found."
		case ErrorTypeStorage:
			return "Local session storage failed. Please try again."
		case ErrorTypeTimeout:
			return "The request took too long. Please try again."
		case ErrorTypeForbidden:
			return "You do not have permission to perform this action."
		case ErrorTypeNetwork:
			return "Could not reach the server. Check your connection and try again."
		case ErrorTypeServer:
			if appErr.StatusCode == http.StatusTooManyRequests {
				return "Too many requests. Please wait a moment and try again."
			}
			return "The server is having trouble. Please try again later."
		case ErrorTypeAuth:
			return "Your session has expired. Please log in again."
		case ErrorTypeAPI:
			return appErr.Message
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput, ErrorTypeAuth, ErrorTypeForbidden, ErrorTypeAPI:
			return false // user-facing outcomes, not faults
		default:
			return true
		}
	}
	return true
}
