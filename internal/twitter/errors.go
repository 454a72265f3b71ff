package twitter

import (
	"fmt"
	"strings"
)

// apiError is one entry of the errors array the API attaches to failed or
// partially failed responses. v2 uses title/detail, v1.1 uses message/code.
type apiError struct {
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e apiError) String() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

// APIError is a structured error payload reported by the platform API.
type APIError struct {
	Operation  string
	StatusCode int
	Errors     []apiError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("twitter %s failed: status %d", e.Operation, e.StatusCode)
	}
	msgs := make([]string, len(e.Errors))
	for i, detail := range e.Errors {
		msgs[i] = detail.String()
	}
	return fmt.Sprintf("twitter %s failed: %s", e.Operation, strings.Join(msgs, "; "))
}
