package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidInput indicates the request payload failed validation.
	ErrInvalidInput = errors.New("catalog: invalid input")
	// ErrNotFound indicates the tool or review does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrUnauthorized indicates a missing, invalid or expired bearer token.
	ErrUnauthorized = errors.New("catalog: unauthorized")
	// ErrInvalidTransition indicates a moderation step out of a terminal status.
	ErrInvalidTransition = errors.New("catalog: invalid status transition")
)

// APIError is returned for any non-success response from the catalog API.
type APIError struct {
	Operation string
	Status    int
	// Body holds the response payload verbatim (compacted when it is JSON).
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("catalog: %s failed (%d): %s", e.Operation, e.Status, e.Detail())
}

// Detail returns the server payload, falling back to the status text.
func (e *APIError) Detail() string {
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	return http.StatusText(e.Status)
}

// Is maps well-known statuses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrInvalidInput:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrInvalidTransition:
		return e.Status == http.StatusConflict
	default:
		return false
	}
}

// AsAPIError unwraps err into an APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
