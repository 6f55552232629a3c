package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated indicates the bearer token was rejected.
	ErrUnauthenticated = errors.New("backend: unauthenticated")
	// ErrNotFound indicates the record no longer exists on the backend.
	ErrNotFound = errors.New("backend: not found")
)

// APIError carries a failure reported by the backend. Semantic failures
// arrive inside an HTTP 200 envelope with success=false or error=true.
type APIError struct {
	Status   int
	Message  string
	Semantic bool
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Semantic {
		return fmt.Sprintf("backend: %s", msg)
	}
	return fmt.Sprintf("backend: %s (status %d)", msg, e.Status)
}

// UserMessage returns the text shown in a flash notification, falling back
// to a generic message when the backend sent none.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "Record not found"
	}
	return "Something went wrong, please try again"
}
