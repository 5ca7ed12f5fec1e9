package auth

import (
	"errors"
	"fmt"

	"github.com/tasknest/tasknest-cli/internal/api"
)

// ErrorKind discriminates the auth-layer error taxonomy.
type ErrorKind string

// Auth-layer error kinds.
const (
	// KindInvalidCredentials indicates the backend rejected the supplied
	// username/password or challenge code.
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	// KindChallengeRequired indicates an operation needs a resolved challenge
	// first.
	KindChallengeRequired ErrorKind = "challenge_required"
	// KindTokenExpired indicates the stored session is no longer valid.
	KindTokenExpired ErrorKind = "token_expired"
	// KindAPIError carries a server-reported failure message through.
	KindAPIError ErrorKind = "api_error"
	// KindUnknown covers everything else; Cause holds the transport or decode
	// description for diagnostics.
	KindUnknown ErrorKind = "unknown"
	// KindBusy indicates another session-mutating call is already in flight.
	KindBusy ErrorKind = "busy"
)

// Error is the auth-layer error surfaced by the session manager.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error returns a string representation of the auth error.
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

// AsError extracts an *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var authErr *Error
	ok := errors.As(err, &authErr)
	return authErr, ok
}

// IsKind reports whether err is an auth error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	authErr, ok := AsError(err)
	return ok && authErr.Kind == kind
}

// mapError translates a transport-layer failure into the auth taxonomy.
// Cancellations pass through untouched so callers can treat them as no-ops.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if api.IsCancelled(err) {
		return err
	}
	apiErr, ok := api.AsError(err)
	if !ok {
		return &Error{Kind: KindUnknown, Message: "authentication failed", Cause: err}
	}
	switch apiErr.Kind {
	case api.KindUnauthorized:
		return &Error{Kind: KindInvalidCredentials, Message: "invalid credentials", Cause: err}
	case api.KindServer:
		return &Error{Kind: KindAPIError, Message: apiErr.Message, Cause: err}
	default:
		return &Error{Kind: KindUnknown, Message: "authentication failed", Cause: err}
	}
}

// UserFriendlyMessage returns the single human-readable string shown to end
// users for an auth failure. Raw payloads and transport detail never surface
// here.
func UserFriendlyMessage(err error) string {
	if api.IsCancelled(err) {
		return ""
	}
	authErr, ok := AsError(err)
	if !ok {
		return "Something went wrong. Please try again."
	}
	switch authErr.Kind {
	case KindInvalidCredentials:
		return "Incorrect username or password."
	case KindChallengeRequired:
		return "Additional verification is required to continue."
	case KindTokenExpired:
		return "Your session has expired. Please log in again."
	case KindAPIError:
		if authErr.Message != "" {
			return authErr.Message
		}
		return "The server rejected the request. Please try again."
	case KindBusy:
		return "Another sign-in attempt is already in progress."
	default:
		return "Something went wrong. Please try again."
	}
}
