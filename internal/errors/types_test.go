package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		expected  string
	}{
		{"Validation", ErrorTypeValidation, "validation"},
		{"NotFound", ErrorTypeNotFound, "not_found"},
		{"Storage", ErrorTypeStorage, "storage"},
		{"InvalidInput", ErrorTypeInvalidInput, "invalid_input"},
		{"Timeout", ErrorTypeTimeout, "timeout"},
		{"Forbidden", ErrorTypeForbidden, "forbidden"},
		{"Network", ErrorTypeNetwork, "network"},
		{"Server", ErrorTypeServer, "server"},
		{"Auth", ErrorTypeAuth, "auth"},
		{"API", ErrorTypeAPI, "api"},
		{"Unknown", ErrorType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.errorType.String()
			if result != tt.expected {
				t.Errorf("ErrorType.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "Error without cause",
			appError: &AppError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			expected: "validation: invalid input",
		},
		{
			name: "Error with cause",
			appError: &AppError{
				Type:    ErrorTypeNetwork,
				Message: "no response from server: search",
				Cause:   errors.New("connection refused"),
			},
			expected: "network: no response from server: search (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("AppError.Error() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appError := &AppError{
		Type:    ErrorTypeStorage,
		Message: "wrapped error",
		Cause:   cause,
	}

	if appError.Unwrap() != cause {
		t.Errorf("AppError.Unwrap() = %v, want %v", appError.Unwrap(), cause)
	}
	if !errors.Is(appError, cause) {
		t.Errorf("errors.Is should find the cause through Unwrap")
	}
}

func TestAppError_Is(t *testing.T) {
	err := NewAuthError("")

	if !errors.Is(err, &AppError{Type: ErrorTypeAuth, Code: "UNAUTHORIZED"}) {
		t.Errorf("AppError.Is should match on type and code")
	}
	if errors.Is(err, &AppError{Type: ErrorTypeForbidden, Code: "FORBIDDEN"}) {
		t.Errorf("AppError.Is should not match a different type")
	}
}

func TestAppError_Retriable(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected bool
	}{
		{"network", NewNetworkError("search", nil), true},
		{"server", NewServerError("search", http.StatusBadGateway, ""), true},
		{"timeout", NewTimeoutError("search", "10s"), true},
		{"auth", NewAuthError(""), false},
		{"forbidden", NewForbiddenError("delete review", ""), false},
		{"not found", NewNotFoundError("provider", "9"), false},
		{"api", NewAPIError("login", http.StatusConflict, "email taken"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Retriable(); got != tt.expected {
				t.Errorf("Retriable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Context(t *testing.T) {
	err := NewValidationError("bad", nil).WithContext("field", "email").WithStatus(http.StatusBadRequest)

	value, ok := err.GetContext("field")
	if !ok || value != "email" {
		t.Errorf("GetContext(field) = %v, %v", value, ok)
	}
	if _, ok := err.GetContext("missing"); ok {
		t.Errorf("GetContext should report missing keys")
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Errorf("WithStatus did not record status, got %d", err.StatusCode)
	}

	empty := &AppError{}
	if _, ok := empty.GetContext("any"); ok {
		t.Errorf("GetContext on nil map should return false")
	}
}
