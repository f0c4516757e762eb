package telemetry

import (
	"errors"
	"fmt"
)

// APIError is returned when the backend answers with a non-success status
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API error: %s: %s: %s", e.Endpoint, e.Status, e.Body)
	}
	return fmt.Sprintf("API error: %s: %s", e.Endpoint, e.Status)
}

// IsNotFound reports whether err is an APIError for a 404 response.
// The backend answers 404 when it has no checks recorded yet.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
