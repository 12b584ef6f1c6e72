package apierror

import (
	"fmt"
	"net/http"
)

// APIError is a request-level failure that already knows its HTTP status.
// Flow errors with fixed wire messages live in internal/model; APIError
// covers the dynamic ones, validation messages in particular.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}

// BadRequest wraps a human-readable validation message.
func BadRequest(message string) *APIError {
	return New("BAD_REQUEST", message, http.StatusBadRequest)
}
