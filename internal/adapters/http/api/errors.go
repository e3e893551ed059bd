package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrMissingAuthHeader = errors.New("authorization header required")
	ErrMalformedAuth     = errors.New("invalid authorization format")
)
