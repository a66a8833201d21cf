package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType categorizes a GitHub API failure.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeInvalidRequest
	ErrTypeServiceUnavailable
	ErrTypeTransport
	ErrTypeUnknown
)

// String returns a human-readable description of the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeTransport:
		return "transport error"
	default:
		return "unknown error"
	}
}

// APIError is a typed GitHub API failure. The original API message is
// always carried; nothing is retried, every APIError is fatal to the run.
type APIError struct {
	Type       ErrorType
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github: %s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("github: %s: %s (status: %d)", e.Type, e.Message, e.StatusCode)
}

// Is matches APIErrors by type for errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// MapHTTPError maps a non-2xx GitHub response to a typed APIError.
func MapHTTPError(statusCode int, body []byte) *APIError {
	message := parseErrorMessage(statusCode, body)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &APIError{Type: ErrTypeAuthentication, Message: message, StatusCode: statusCode}
	case http.StatusTooManyRequests:
		return &APIError{Type: ErrTypeRateLimit, Message: message, StatusCode: statusCode}
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return &APIError{Type: ErrTypeInvalidRequest, Message: message, StatusCode: statusCode}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &APIError{Type: ErrTypeServiceUnavailable, Message: message, StatusCode: statusCode}
	default:
		return &APIError{Type: ErrTypeUnknown, Message: message, StatusCode: statusCode}
	}
}

// parseErrorMessage extracts a readable message from GitHub's error body.
func parseErrorMessage(statusCode int, body []byte) string {
	var errResp apiErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		preview := strings.TrimSpace(string(body))
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		if preview == "" {
			return fmt.Sprintf("HTTP %d", statusCode)
		}
		return fmt.Sprintf("HTTP %d: %s", statusCode, preview)
	}

	if len(errResp.Errors) > 0 {
		var details []string
		for _, e := range errResp.Errors {
			switch {
			case e.Message != "":
				details = append(details, e.Message)
			case e.Field != "":
				details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Code))
			}
		}
		if len(details) > 0 {
			return fmt.Sprintf("%s: %s", errResp.Message, strings.Join(details, "; "))
		}
	}

	return errResp.Message
}
