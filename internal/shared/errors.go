package shared

import "errors"

// Error classes shared across packages so transports can map them to
// status codes with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)
