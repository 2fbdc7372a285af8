// Package apierrors defines the error taxonomy surfaced by the API client.
//
// Every failure a caller can observe falls into exactly one of four classes:
// NetworkError (no response obtained), HTTPError (response obtained with a
// non-2xx status), ParseError (malformed response body) and ValidationError
// (local precondition failure that never reached the network). All of them
// render to a human-readable message suitable for direct display.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is matching across the taxonomy.
var (
	ErrNetwork    = errors.New("network error")
	ErrHTTP       = errors.New("http error")
	ErrParse      = errors.New("parse error")
	ErrValidation = errors.New("validation error")
)

// NetworkError reports a transport-level failure: connection refused, DNS
// failure, timeout. No HTTP response was obtained.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// HTTPError reports a response with a status outside the 2xx range. Message
// holds the text extracted from the response body's "message" field when
// present, otherwise a synthesized "HTTP <status> <status text>" string.
type HTTPError struct {
	URL     string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d %s", e.Status, http.StatusText(e.Status))
}

func (e *HTTPError) Unwrap() error {
	return ErrHTTP
}

// ParseError reports a response body that could not be decoded as JSON.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ValidationError reports a local precondition failure. Requests that fail
// validation are never sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid creates a ValidationError with the given message.
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an
// HTTPError.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// DisplayMessage returns the string a UI should show for err. Every error in
// the taxonomy already renders a readable message; this exists so callers do
// not need to special-case nil.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
