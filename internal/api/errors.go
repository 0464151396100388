package api

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the client. Stores and views branch on these
// with errors.Is.
var (
	// ErrUnauthorized means the server rejected the bearer token. By the
	// time a caller sees it the unauthorized hook has already fired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned for a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotScoped means a tenant-scoped call was attempted with no active
	// salon. It is raised locally, before any network traffic.
	ErrNotScoped = errors.New("no active salon selected")
)

// ValidationError carries the server's per-field messages verbatim.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// APIError is any other non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// NetworkError is a transport failure: no response was received at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
