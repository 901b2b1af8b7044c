package spark

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ErrorType represents the category of a client error.
type ErrorType string

const (
	// ErrorTypeInvalidArgument marks errors detected locally before any
	// request is sent (e.g., a bad reasoning level).
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"

	// ErrorTypeTransport marks connection failures and non-2xx HTTP
	// responses. These are fatal to the current call.
	ErrorTypeTransport ErrorType = "transport"
)

// Error is a structured client error. Callers can distinguish argument
// errors from transport errors via the Type field:
//
//	var sparkErr *spark.Error
//	if errors.As(err, &sparkErr) && sparkErr.Type == spark.ErrorTypeTransport { ... }
//
// Unexpected response shapes are never surfaced as errors; they are absorbed
// by the fallback and skip paths documented on Complete and ChatStream.
type Error struct {
	Type       ErrorType
	StatusCode int    // HTTP status for transport errors, 0 otherwise
	Param      string // offending parameter for invalid-argument errors
	Message    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Type, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewInvalidArgumentError creates an Error for invalid call parameters.
func NewInvalidArgumentError(param, message string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidArgument,
		Param:   param,
		Message: message,
	}
}

// NewTransportError creates an Error for HTTP and connection failures.
func NewTransportError(statusCode int, message string) *Error {
	return &Error{
		Type:       ErrorTypeTransport,
		StatusCode: statusCode,
		Message:    message,
	}
}

// MapHTTPError converts an HTTP response with a non-2xx status code into a
// transport Error. It attempts to parse the response body as a
// ChatErrorResponse to extract a descriptive message.
func MapHTTPError(resp *http.Response) *Error {
	message := extractErrorMessage(resp.Body)

	if message == "" {
		switch {
		case resp.StatusCode == http.StatusBadRequest:
			message = "backend rejected the request"
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			message = "backend authentication failed"
		case resp.StatusCode == http.StatusNotFound:
			message = "backend resource not found"
		case resp.StatusCode == http.StatusTooManyRequests:
			message = "backend rate limit exceeded"
		case resp.StatusCode >= http.StatusInternalServerError:
			message = "backend server error"
		default:
			message = "unexpected backend error"
		}
	}

	return NewTransportError(resp.StatusCode, message)
}

// MapNetworkError converts a network-level error (connection refused,
// timeout, DNS resolution failure) into a transport Error.
func MapNetworkError(err error) *Error {
	return NewTransportError(0, fmt.Sprintf("backend connection error: %s", err.Error()))
}

// extractErrorMessage tries to parse the response body as a ChatErrorResponse
// and returns the error message if found.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp ChatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}
