package notify

import "fmt"

// StatusError is returned when the webhook answers with a status other
// than 200 or 201.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("notify: webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("notify: webhook returned status %d: %s", e.StatusCode, e.Body)
}

// IsServerError returns true if the webhook failed on its side (HTTP 5xx).
func (e *StatusError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}
