package llm

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when the provider API key is not configured.
var ErrMissingCredential = errors.New("llm: API key not set")

// ServiceError is a failure talking to the completion provider.
type ServiceError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	err        error
}

// NewServiceError wraps err as a provider failure.
func NewServiceError(provider string, status int, err error) error {
	return &ServiceError{Provider: provider, StatusCode: status, err: err}
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// IsServiceError reports whether err came from the completion provider.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) || errors.Is(err, ErrMissingCredential)
}
