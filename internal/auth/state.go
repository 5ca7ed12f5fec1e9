// Package auth implements the session lifecycle against the TaskNest backend:
// login with multi-step challenge resolution, registration and confirmation,
// session restoration at startup, tenant resolution, and logout. It owns the
// session state machine and maps transport failures into the auth error
// taxonomy surfaced to callers.
package auth

// State is the session lifecycle state.
type State int

// Session states.
const (
	// StateUnauthenticated means no valid session exists.
	StateUnauthenticated State = iota
	// StateAuthenticating means a login call is in flight.
	StateAuthenticating
	// StateChallengePending means the backend demanded a challenge (e.g. an
	// MFA code) that must be resolved before tokens are issued.
	StateChallengePending
	// StateAuthenticated means a credential bundle is persisted and valid.
	StateAuthenticated
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateChallengePending:
		return "challenge_pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Challenge is a server-driven intermediate authentication step. It is held
// only in memory for the duration of a multi-step login and never persisted.
type Challenge struct {
	// Kind names the challenge type reported by the backend
	// (e.g. "SMS_MFA", "SOFTWARE_TOKEN_MFA").
	Kind string
	// Session is the opaque continuation token echoed back when responding.
	Session string
	// Parameters carries optional challenge metadata from the backend.
	Parameters map[string]string
}
