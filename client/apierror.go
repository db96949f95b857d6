package client

import (
	"errors"
	"fmt"
)

var (
	ErrMissingEndpoint = errors.New("empty request endpoint")
)

// Client could not be constructed: missing credentials or malformed endpoint URLs.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid client configuration: %s", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// HTTP method outside of GET and POST, or a file upload attempted with GET.
type InvalidMethodError struct {
	Method string
	Reason string
}

func (e *InvalidMethodError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid HTTP method %q: %s", e.Method, e.Reason)
	}
	return fmt.Sprintf("invalid HTTP method %q: only GET and POST are supported", e.Method)
}

// Non-successful HTTP response status (outside 200-299).
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API request failed (HTTP %d)", e.StatusCode)
}

// Response body could not be parsed in the expected format.
type DecodeError struct {
	// "json", "xml", or "urlencoded"
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed decoding %s response body: %s", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// OAuth handshake failure, or a service failure response with an error code below 100.
type AuthError struct {
	// Service error code; zero for handshake failures
	Code int

	Message string

	// HTTP status of a failed handshake step; zero otherwise
	StatusCode int
}

func (e *AuthError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	if e.Code > 0 {
		return fmt.Sprintf("authentication failed (code %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Service failure response (`stat=fail`).
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API request failed (code %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("API request failed (code %d)", e.Code)
}
