package auth

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/keystore"
)

// Outcome reports how a login-style operation concluded.
type Outcome int

const (
	// OutcomeAuthenticated means a session was established and persisted.
	OutcomeAuthenticated Outcome = iota
	// OutcomeChallenge means the backend demanded a challenge; the session is
	// pending until the challenge is resolved.
	OutcomeChallenge
)

// Result is returned by Login, RespondToChallenge and ConfirmSignup.
type Result struct {
	Outcome   Outcome
	Challenge *Challenge
	UserID    string
	Email     string
}

// Manager orchestrates the session lifecycle. It is constructed once at
// startup and injected into everything that needs session operations.
//
// Overlapping session-mutating calls are rejected with a busy error rather
// than serialized; the UI drives one operation at a time.
type Manager struct {
	client *api.Client
	creds  *keystore.Store

	mu              sync.Mutex
	busy            bool
	state           State
	pendingUsername string
	challenge       *Challenge
}

// NewManager creates a session manager on top of the request client and
// credential store.
func NewManager(client *api.Client, creds *keystore.Store) *Manager {
	return &Manager{
		client: client,
		creds:  creds,
		state:  StateUnauthenticated,
	}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionValid reports whether an access token is stored, without a network
// call.
func (m *Manager) SessionValid() bool {
	return m.creds.HasAccessToken()
}

// PendingChallenge returns the challenge awaiting resolution, if any.
func (m *Manager) PendingChallenge() *Challenge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.challenge
}

func (m *Manager) begin(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return &Error{Kind: KindBusy, Message: "a session operation is already in progress"}
	}
	m.busy = true
	m.state = next
	return nil
}

func (m *Manager) finish(state State) {
	m.mu.Lock()
	m.busy = false
	m.state = state
	m.mu.Unlock()
}

// Login submits credentials to /auth/login. The backend may answer with a
// direct token bundle, a challenge, or a bare user object resolved through a
// follow-up status query.
func (m *Manager) Login(ctx context.Context, username, password string) (*Result, error) {
	if err := m.begin(StateAuthenticating); err != nil {
		return nil, err
	}

	resp, err := api.JSONBody[loginResponse](ctx, m.client, http.MethodPost, "/auth/login", loginRequest{
		Username: username,
		Password: password,
	}, false)
	if err != nil {
		m.finish(StateUnauthenticated)
		return nil, mapError(err)
	}

	return m.handleLoginResponse(ctx, username, resp)
}

// RespondToChallenge resolves a pending challenge with the submitted code.
// The code is sent under both MFA keys; the backend consumes the one matching
// the challenge it issued. A further challenge re-enters the pending state.
func (m *Manager) RespondToChallenge(ctx context.Context, code string) (*Result, error) {
	m.mu.Lock()
	challenge := m.challenge
	username := m.pendingUsername
	m.mu.Unlock()
	if challenge == nil {
		return nil, &Error{Kind: KindChallengeRequired, Message: "no challenge is pending"}
	}

	if err := m.begin(StateAuthenticating); err != nil {
		return nil, err
	}

	resp, err := api.JSONBody[loginResponse](ctx, m.client, http.MethodPost, "/auth/respond-to-challenge", challengeResponseRequest{
		ChallengeName: challenge.Kind,
		Session:       challenge.Session,
		ChallengeResponses: map[string]string{
			challengeKeyUsername:      username,
			challengeKeySMSCode:       code,
			challengeKeySoftwareToken: code,
		},
	}, false)
	if err != nil {
		m.finish(StateChallengePending)
		return nil, mapError(err)
	}

	return m.handleLoginResponse(ctx, username, resp)
}

// handleLoginResponse interprets the three possible shapes of a login-style
// response and finishes the in-flight operation accordingly.
func (m *Manager) handleLoginResponse(ctx context.Context, username string, resp *loginResponse) (*Result, error) {
	switch {
	case resp.ChallengeName != "":
		challenge := &Challenge{
			Kind:       resp.ChallengeName,
			Session:    resp.Session,
			Parameters: resp.ChallengeParameters,
		}
		m.mu.Lock()
		m.challenge = challenge
		m.pendingUsername = username
		m.busy = false
		m.state = StateChallengePending
		m.mu.Unlock()
		log.WithField("state", StateChallengePending).Debug("login challenge received")
		return &Result{Outcome: OutcomeChallenge, Challenge: challenge}, nil

	case resp.Tokens.present():
		if err := m.persistSession(ctx, resp); err != nil {
			m.finish(StateUnauthenticated)
			return nil, err
		}
		m.clearChallenge()
		m.finish(StateAuthenticated)
		result := &Result{Outcome: OutcomeAuthenticated}
		if resp.User != nil {
			result.UserID = resp.User.ID
			result.Email = resp.User.Email
		}
		return result, nil

	case resp.User != nil:
		// No tokens and no challenge: the backend established a cookie
		// session. Resolve identity through the status endpoint.
		status, err := api.JSON[statusResponse](ctx, m.client, http.MethodGet, "/auth/status", nil, false)
		if err != nil || status.User == nil {
			m.finish(StateUnauthenticated)
			if err != nil {
				return nil, mapError(err)
			}
			return nil, &Error{Kind: KindUnknown, Message: "login response carried no tokens and identity could not be resolved"}
		}
		if err = m.creds.SetUser(status.User.ID, status.User.Email); err != nil {
			m.finish(StateUnauthenticated)
			return nil, &Error{Kind: KindUnknown, Message: "failed to persist user identity", Cause: err}
		}
		if err = m.persistTenant(ctx, status.ActiveOrganization); err != nil {
			m.finish(StateUnauthenticated)
			return nil, err
		}
		m.clearChallenge()
		m.finish(StateAuthenticated)
		return &Result{Outcome: OutcomeAuthenticated, UserID: status.User.ID, Email: status.User.Email}, nil

	default:
		m.finish(StateUnauthenticated)
		return nil, &Error{Kind: KindUnknown, Message: "login response carried neither tokens, challenge, nor user"}
	}
}

// persistSession writes the token bundle, user identity and tenant context.
// The bundle is written first so the follow-up tenant status query can
// authenticate with the fresh access token.
func (m *Manager) persistSession(ctx context.Context, resp *loginResponse) error {
	err := m.creds.SaveBundle(keystore.Bundle{
		AccessToken:  resp.Tokens.AccessToken,
		IDToken:      resp.Tokens.IDToken,
		RefreshToken: resp.Tokens.RefreshToken,
	})
	if err != nil {
		return &Error{Kind: KindUnknown, Message: "failed to persist credentials", Cause: err}
	}
	if resp.User != nil {
		if err = m.creds.SetUser(resp.User.ID, resp.User.Email); err != nil {
			return &Error{Kind: KindUnknown, Message: "failed to persist user identity", Cause: err}
		}
	}
	return m.persistTenant(ctx, resp.ActiveOrganization)
}

// persistTenant records the active organization id. When the login response
// did not report one, a follow-up status query resolves it; if it is still
// absent an explicit empty marker is stored, distinguishing "resolved to
// none" from "not yet resolved".
func (m *Manager) persistTenant(ctx context.Context, active *organizationRef) error {
	if active != nil && active.ID > 0 {
		if err := m.creds.SetOrganizationID(strconv.Itoa(active.ID)); err != nil {
			return &Error{Kind: KindUnknown, Message: "failed to persist organization id", Cause: err}
		}
		return nil
	}

	status, err := api.JSON[statusResponse](ctx, m.client, http.MethodGet, "/auth/status", nil, true)
	if err == nil && status.ActiveOrganization != nil && status.ActiveOrganization.ID > 0 {
		if errSet := m.creds.SetOrganizationID(strconv.Itoa(status.ActiveOrganization.ID)); errSet != nil {
			return &Error{Kind: KindUnknown, Message: "failed to persist organization id", Cause: errSet}
		}
		return nil
	}
	if err != nil {
		log.WithField("error", err).Debug("tenant resolution query failed, storing empty marker")
	}
	if errSet := m.creds.SetOrganizationID(""); errSet != nil {
		return &Error{Kind: KindUnknown, Message: "failed to persist organization id", Cause: errSet}
	}
	return nil
}

// Register creates a new account. The backend sends a confirmation code out
// of band; ConfirmSignup completes the flow.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	if err := m.begin(StateAuthenticating); err != nil {
		return err
	}
	_, err := m.client.Post(ctx, "/auth/register", registerRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, false)
	m.finish(StateUnauthenticated)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// ConfirmSignup submits the signup confirmation code. A token bundle in the
// response establishes the session immediately.
func (m *Manager) ConfirmSignup(ctx context.Context, username, code string) (*Result, error) {
	if err := m.begin(StateAuthenticating); err != nil {
		return nil, err
	}
	resp, err := api.JSONBody[loginResponse](ctx, m.client, http.MethodPost, "/auth/confirm-signup", confirmSignupRequest{
		Username: username,
		Code:     code,
	}, false)
	if err != nil {
		m.finish(StateUnauthenticated)
		return nil, mapError(err)
	}
	if !resp.Tokens.present() {
		// Confirmed but no session issued; the user logs in next.
		m.finish(StateUnauthenticated)
		return &Result{Outcome: OutcomeAuthenticated}, nil
	}
	return m.handleLoginResponse(ctx, username, resp)
}

// Logout tears the session down. The server-side call is best effort: any
// failure is ignored and local credentials are cleared regardless.
func (m *Manager) Logout(ctx context.Context) {
	if _, err := m.client.Post(ctx, "/auth/logout", nil, true); err != nil {
		log.WithField("error", err).Debug("server-side logout failed, clearing local session anyway")
	}
	if err := m.creds.ClearAll(); err != nil {
		log.Errorf("failed to clear credential store on logout: %v", err)
	}
	m.mu.Lock()
	m.state = StateUnauthenticated
	m.challenge = nil
	m.pendingUsername = ""
	m.mu.Unlock()
}

// Restore re-establishes the session at startup. With a stored access token
// it queries /auth/status; a reported user makes the session authenticated.
// Failures leave local credentials in place: only the request client's 401
// handling clears them.
func (m *Manager) Restore(ctx context.Context) bool {
	if !m.creds.HasAccessToken() {
		m.finishRestore(StateUnauthenticated)
		return false
	}

	status, err := api.JSON[statusResponse](ctx, m.client, http.MethodGet, "/auth/status", nil, true)
	if err != nil || status.User == nil {
		if err != nil {
			log.WithField("error", err).Debug("session restoration failed")
		}
		m.finishRestore(StateUnauthenticated)
		return false
	}

	if err = m.creds.SetUser(status.User.ID, status.User.Email); err != nil {
		log.Errorf("failed to persist user identity during restore: %v", err)
	}
	if status.ActiveOrganization != nil && status.ActiveOrganization.ID > 0 {
		if err = m.creds.SetOrganizationID(strconv.Itoa(status.ActiveOrganization.ID)); err != nil {
			log.Errorf("failed to persist organization id during restore: %v", err)
		}
	}
	m.finishRestore(StateAuthenticated)
	return true
}

func (m *Manager) finishRestore(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// ChangePassword rotates the account password for the authenticated session.
func (m *Manager) ChangePassword(ctx context.Context, previous, proposed string) error {
	_, err := m.client.Post(ctx, "/auth/change-password", changePasswordRequest{
		PreviousPassword: previous,
		ProposedPassword: proposed,
	}, true)
	if err != nil {
		if api.IsUnauthorized(err) {
			// The request client already cleared the store.
			m.finishRestore(StateUnauthenticated)
			return &Error{Kind: KindTokenExpired, Message: "session expired", Cause: err}
		}
		return mapError(err)
	}
	return nil
}

func (m *Manager) clearChallenge() {
	m.mu.Lock()
	m.challenge = nil
	m.pendingUsername = ""
	m.mu.Unlock()
}
