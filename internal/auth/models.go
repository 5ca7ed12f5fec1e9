package auth

// Wire types for the auth endpoints. Field names on the wire are snake_case
// per the backend contract.

// Cognito-compatible keys used when responding to a challenge. The code is
// sent under both MFA keys; the backend picks the one matching the challenge
// it issued.
const (
	challengeKeyUsername      = "USERNAME"
	challengeKeySMSCode       = "SMS_MFA_CODE"
	challengeKeySoftwareToken = "SOFTWARE_TOKEN_MFA_CODE"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type challengeResponseRequest struct {
	ChallengeName      string            `json:"challenge_name"`
	Session            string            `json:"session"`
	ChallengeResponses map[string]string `json:"challenge_responses"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmSignupRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type changePasswordRequest struct {
	PreviousPassword string `json:"previous_password"`
	ProposedPassword string `json:"proposed_password"`
}

// tokenBundle is the credential triple issued on successful authentication.
type tokenBundle struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

func (t *tokenBundle) present() bool {
	return t != nil && t.AccessToken != ""
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type organizationRef struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// loginResponse covers the three shapes /auth/login and
// /auth/respond-to-challenge can produce: a direct token bundle, a further
// challenge, or a bare user object.
type loginResponse struct {
	Tokens              *tokenBundle      `json:"tokens,omitempty"`
	User                *userPayload      `json:"user,omitempty"`
	ActiveOrganization  *organizationRef  `json:"active_organization,omitempty"`
	ChallengeName       string            `json:"challenge_name,omitempty"`
	Session             string            `json:"session,omitempty"`
	ChallengeParameters map[string]string `json:"challenge_parameters,omitempty"`
}

// statusResponse is the /auth/status payload used for session restoration and
// tenant resolution.
type statusResponse struct {
	User               *userPayload     `json:"user,omitempty"`
	ActiveOrganization *organizationRef `json:"active_organization,omitempty"`
}
