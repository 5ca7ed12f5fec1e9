package tasknest

import (
	"context"
	"net/http"
	"sync"

	"github.com/tasknest/tasknest-cli/internal/api"
)

// CreateTeamRequest is the payload for creating a team.
type CreateTeamRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

// TeamService wraps the team endpoints.
type TeamService struct {
	client *api.Client

	mu     sync.RWMutex
	cached []Team
}

// NewTeamService creates a team service on top of the request client.
func NewTeamService(client *api.Client) *TeamService {
	return &TeamService{client: client}
}

// List fetches the teams of the active tenant and refreshes the cache.
func (s *TeamService) List(ctx context.Context) ([]Team, error) {
	teams, err := api.Enveloped[[]Team](ctx, s.client, http.MethodGet, "/teams", nil, true)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cached = *teams
	s.mu.Unlock()
	return *teams, nil
}

// Cached returns the most recently fetched team list.
func (s *TeamService) Cached() []Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Team, len(s.cached))
	copy(out, s.cached)
	return out
}

// Create creates a team.
func (s *TeamService) Create(ctx context.Context, req CreateTeamRequest) (*Team, error) {
	return api.JSONBody[Team](ctx, s.client, http.MethodPost, "/teams", req, true)
}
