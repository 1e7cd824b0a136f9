// Package common provides shared constants, types, and utilities
// used across the nordgen configuration generator.
package common

import "errors"

// Sentinel errors for pipeline operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Input validation errors. Fatal before any network call.
	ErrInvalidToken     = errors.New("invalid access token format")
	ErrInvalidDNS       = errors.New("invalid DNS address")
	ErrInvalidKeepalive = errors.New("keepalive out of range")
	ErrCancelled        = errors.New("operation cancelled")

	// API errors. Fatal for the pipeline, never retried.
	ErrAuthRejected      = errors.New("access token rejected")
	ErrNetwork           = errors.New("network request failed")
	ErrMalformedResponse = errors.New("malformed API response")

	// Write errors. Local to a single job, collected and reported.
	ErrWrite   = errors.New("profile write failed")
	ErrTimeout = errors.New("write timed out")

	// Credential storage errors.
	ErrTokenNotFound     = errors.New("no stored access token")
	ErrCredentialStorage = errors.New("failed to store access token")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
