package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx reply from the backend. Message is the backend's
// "detail" string when one was sent, else the HTTP status text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

func newAPIError(code int, body []byte) *APIError {
	msg := ""
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Detail.(string); ok && s != "" {
			msg = s
		}
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", code)
	}
	return &APIError{StatusCode: code, Message: msg}
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
