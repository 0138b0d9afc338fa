package httpclient

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/errors"
)

// errorBody is the error envelope returned by the backend. message may be
// a string or a list of strings.
type errorBody struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

// serverMessage extracts a human readable message from an error body
func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	if len(eb.Message) > 0 {
		var s string
		if err := json.Unmarshal(eb.Message, &s); err == nil && s != "" {
			return s
		}
		var list []string
		if err := json.Unmarshal(eb.Message, &list); err == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}
	}
	return eb.Error
}

// statusError maps a non-2xx response onto the error taxonomy
func statusError(operation, path string, status int, body []byte) *errors.AppError {
	msg := serverMessage(body)

	switch {
	case status == http.StatusUnauthorized:
		return errors.NewAuthError(msg).WithContext("operation", operation)
	case status == http.StatusForbidden:
		return errors.NewForbiddenError(operation, msg)
	case status == http.StatusNotFound:
		return errors.NewNotFoundError(operation, path)
	case status == http.StatusTooManyRequests || status >= 500:
		return errors.NewServerError(operation, status, msg)
	default:
		return errors.NewAPIError(operation, status, msg)
	}
}

// transportError classifies a failure where no response was received
func transportError(operation string, timeout time.Duration, err error) *errors.AppError {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.NewTimeoutError(operation, timeout.String()).WithStatus(0)
	}
	return errors.NewNetworkError(operation, err)
}
