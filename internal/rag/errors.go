package rag

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the collection does not exist yet.
	ErrNotFound = errors.New("collection not found")
	// ErrInvalidInput marks request payloads that could not be decoded.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingAPIKey is wrapped in a ProviderError when a client has no key.
	ErrMissingAPIKey = errors.New("api key not configured")
)

// ProviderError reports a failed call to an external provider: auth,
// network, timeout, non-success status or an undecodable response.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// StatusError carries a non-success HTTP status from a provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: %d: %s", e.StatusCode, e.Body)
}

// IsProviderError reports whether err came from an external provider.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
