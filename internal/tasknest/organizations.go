package tasknest

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/keystore"
)

type setActiveOrganizationRequest struct {
	OrganizationID int `json:"organization_id"`
}

// OrganizationService wraps the organization endpoints. Switching the active
// organization also updates the tenant id in the credential store so
// subsequent requests are scoped to the new tenant.
type OrganizationService struct {
	client *api.Client
	creds  *keystore.Store

	mu     sync.RWMutex
	cached []Organization
}

// NewOrganizationService creates an organization service.
func NewOrganizationService(client *api.Client, creds *keystore.Store) *OrganizationService {
	return &OrganizationService{client: client, creds: creds}
}

// List fetches the organizations the user belongs to and refreshes the cache.
func (s *OrganizationService) List(ctx context.Context) ([]Organization, error) {
	orgs, err := api.Enveloped[[]Organization](ctx, s.client, http.MethodGet, "/organizations", nil, true)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cached = *orgs
	s.mu.Unlock()
	return *orgs, nil
}

// Cached returns the most recently fetched organization list.
func (s *OrganizationService) Cached() []Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Organization, len(s.cached))
	copy(out, s.cached)
	return out
}

// SetActive switches the active organization on the backend and persists the
// new tenant id locally.
func (s *OrganizationService) SetActive(ctx context.Context, id int) error {
	if _, err := s.client.Put(ctx, "/organizations/active", setActiveOrganizationRequest{OrganizationID: id}, true); err != nil {
		return err
	}
	return s.creds.SetOrganizationID(strconv.Itoa(id))
}
