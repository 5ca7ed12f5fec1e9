package tasknest

import (
	"context"
	"net/http"
	"sync"

	"github.com/tasknest/tasknest-cli/internal/api"
)

// CreateProjectRequest is the payload for creating a project.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// UpdateProjectRequest is the payload for updating a project. Zero-valued
// fields are omitted and left unchanged.
type UpdateProjectRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// ProjectService wraps the project endpoints and caches the last fetched
// list for presentation.
type ProjectService struct {
	client *api.Client

	mu     sync.RWMutex
	cached []Project
}

// NewProjectService creates a project service on top of the request client.
func NewProjectService(client *api.Client) *ProjectService {
	return &ProjectService{client: client}
}

// List fetches all projects visible to the active tenant and refreshes the
// cache.
func (s *ProjectService) List(ctx context.Context) ([]Project, error) {
	projects, err := api.Enveloped[[]Project](ctx, s.client, http.MethodGet, "/projects", nil, true)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cached = *projects
	s.mu.Unlock()
	return *projects, nil
}

// Cached returns the most recently fetched project list without a network
// call.
func (s *ProjectService) Cached() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, len(s.cached))
	copy(out, s.cached)
	return out
}

// Get fetches a single project.
func (s *ProjectService) Get(ctx context.Context, id string) (*Project, error) {
	return api.JSON[Project](ctx, s.client, http.MethodGet, "/projects/"+id, nil, true)
}

// Create creates a project.
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	return api.JSONBody[Project](ctx, s.client, http.MethodPost, "/projects", req, true)
}

// Update modifies a project.
func (s *ProjectService) Update(ctx context.Context, id string, req UpdateProjectRequest) (*Project, error) {
	return api.JSONBody[Project](ctx, s.client, http.MethodPut, "/projects/"+id, req, true)
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	_, err := s.client.Delete(ctx, "/projects/"+id, nil, true)
	return err
}
