// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Common sentinels across api/service/state layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization (401/403).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSession indicates an authenticated call was attempted without a credential.
	ErrNoSession = errors.New("no session")

	// ErrMalformedCredential indicates a credential with fewer than two dot-separated segments.
	ErrMalformedCredential = errors.New("malformed credential")

	// ErrDecode indicates the credential payload is not valid base64.
	ErrDecode = errors.New("credential decode error")

	// ErrParse indicates the decoded credential payload is not well-formed JSON.
	ErrParse = errors.New("credential parse error")

	// ErrNoToken indicates a login response that carried no recognized token field.
	ErrNoToken = errors.New("no token returned")

	// ErrTransient indicates a network-level failure before any HTTP status was received.
	ErrTransient = errors.New("transient network error")

	// ErrValidation indicates input rejected before any network call was issued.
	ErrValidation = errors.New("validation")
)

// StatusError carries the HTTP status and server-supplied message of a
// non-success response. It unwraps to ErrUnauthorized or ErrNotFound where
// the status maps onto one, so callers can match with errors.Is.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Status creates a StatusError, falling back to the standard status text
// when the server supplied no message.
func Status(code int, message string) *StatusError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &StatusError{Code: code, Message: message}
}
