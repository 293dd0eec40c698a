package completion

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBaseURL is returned when no endpoint is configured.
	ErrEmptyBaseURL = errors.New("no endpoint base URL configured")

	// ErrEmptyModel is returned when no model is configured.
	ErrEmptyModel = errors.New("no model configured")
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("endpoint returned status %d: %s", e.StatusCode, e.Body)
}
