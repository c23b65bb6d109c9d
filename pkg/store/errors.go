package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoAPIKey is returned when the API token is missing.
	ErrNoAPIKey = errors.New("store: API key required")

	// ErrNoBase is returned when the base or spreadsheet ID is missing.
	ErrNoBase = errors.New("store: base ID required")

	// ErrNoTable is returned when the table or sheet name is missing.
	ErrNoTable = errors.New("store: table name required")

	// ErrNoCredentials is returned when no service account credentials are given.
	ErrNoCredentials = errors.New("store: credentials required")

	// ErrEmptyResponse is returned when the backend accepted the write but returned no ID.
	ErrEmptyResponse = errors.New("store: empty response")
)

// APIError represents an error response from a record store API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Type is the error type from the API (e.g. INVALID_PERMISSIONS_OR_MODEL_NOT_FOUND).
	Type string

	// Message is the error message from the API.
	Message string

	// Provider identifies which backend returned the error.
	Provider string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("store [%s]: API error %d (%s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("store [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsForbidden returns true if this is a permission error (HTTP 403).
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == 403
}

// IsNotFound returns true if the base or table does not exist (HTTP 404).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsSchemaMismatch returns true if the record did not match the table (HTTP 422).
func (e *APIError) IsSchemaMismatch() bool {
	return e.StatusCode == 422
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("store [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
