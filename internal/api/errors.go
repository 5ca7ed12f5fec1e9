// Package api implements the HTTP request client for the TaskNest backend.
// It is the single choke point for every outbound call: it builds authenticated
// JSON requests, attaches session credentials and tenant context, executes them,
// classifies HTTP and network failures, and decodes typed responses.
package api

import (
	"errors"
	"fmt"
)

// Kind discriminates the transport-layer error taxonomy.
type Kind string

// Transport-layer error kinds.
const (
	// KindInvalidTarget indicates the endpoint path could not be combined with
	// the base URL into a valid request target.
	KindInvalidTarget Kind = "invalid_request_target"
	// KindEmptyBody indicates a successful status with no response body where
	// one was expected.
	KindEmptyBody Kind = "empty_response_body"
	// KindDecode indicates a non-empty body that failed to decode into the
	// expected typed shape.
	KindDecode Kind = "decode_failure"
	// KindServer indicates an HTTP status >= 400 other than 401.
	KindServer Kind = "server_error"
	// KindUnauthorized indicates a 401 response, or a missing access token on
	// a call that required authentication.
	KindUnauthorized Kind = "unauthorized"
	// KindTransport indicates a network-level failure: DNS, TLS, timeout,
	// connection reset.
	KindTransport Kind = "transport_failure"
	// KindCancelled indicates the caller cancelled the request context.
	// Callers treat it as a silent no-op, not a real failure.
	KindCancelled Kind = "cancelled"
	// KindUnknown covers failures that fit no other kind.
	KindUnknown Kind = "unknown"
)

// Error is the transport-layer error surfaced by the request client.
type Error struct {
	// Kind classifies the failure.
	Kind Kind `json:"kind"`
	// Message is a human-readable description of the failure.
	Message string `json:"message"`
	// StatusCode is the HTTP status code, when a response was received.
	StatusCode int `json:"status_code,omitempty"`
	// RawBody holds the undecodable response text for diagnosis. It is logged
	// only and never shown to end users.
	RawBody string `json:"-"`
	// Cause is the underlying transport or decode error.
	Cause error `json:"-"`
}

// Error returns a string representation of the request error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a request error with the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// AsError extracts an *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsKind reports whether err is a request error of the given kind.
func IsKind(err error, kind Kind) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == kind
}

// IsUnauthorized reports whether err is an unauthorized request error.
func IsUnauthorized(err error) bool {
	return IsKind(err, KindUnauthorized)
}

// IsCancelled reports whether err is a cancellation, which callers should
// swallow rather than surface.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}
