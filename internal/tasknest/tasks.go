package tasknest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/tasknest/tasknest-cli/internal/api"
)

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	ProjectID  string     `json:"project_id"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest is the payload for updating a task. Zero-valued fields
// are omitted and left unchanged.
type UpdateTaskRequest struct {
	Title      string     `json:"title,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

// TaskService wraps the task endpoints and caches the last fetched list per
// project.
type TaskService struct {
	client *api.Client

	mu     sync.RWMutex
	cached map[string][]Task
}

// NewTaskService creates a task service on top of the request client.
func NewTaskService(client *api.Client) *TaskService {
	return &TaskService{client: client, cached: make(map[string][]Task)}
}

// List fetches the tasks of a project and refreshes the cache. An empty
// projectID fetches every task visible to the active tenant.
func (s *TaskService) List(ctx context.Context, projectID string) ([]Task, error) {
	var params map[string]string
	if projectID != "" {
		params = map[string]string{"project_id": projectID}
	}
	tasks, err := api.Enveloped[[]Task](ctx, s.client, http.MethodGet, "/tasks", params, true)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cached[projectID] = *tasks
	s.mu.Unlock()
	return *tasks, nil
}

// Cached returns the most recently fetched task list for a project.
func (s *TaskService) Cached(projectID string) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached := s.cached[projectID]
	out := make([]Task, len(cached))
	copy(out, cached)
	return out
}

// Get fetches a single task.
func (s *TaskService) Get(ctx context.Context, id string) (*Task, error) {
	return api.JSON[Task](ctx, s.client, http.MethodGet, "/tasks/"+id, nil, true)
}

// Create creates a task.
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	return api.JSONBody[Task](ctx, s.client, http.MethodPost, "/tasks", req, true)
}

// Update modifies a task.
func (s *TaskService) Update(ctx context.Context, id string, req UpdateTaskRequest) (*Task, error) {
	return api.JSONBody[Task](ctx, s.client, http.MethodPut, "/tasks/"+id, req, true)
}

// SetStatus moves a task between board columns.
func (s *TaskService) SetStatus(ctx context.Context, id, status string) (*Task, error) {
	return api.JSONBody[Task](ctx, s.client, http.MethodPut, "/tasks/"+id+"/status", updateTaskStatusRequest{Status: status}, true)
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	_, err := s.client.Delete(ctx, "/tasks/"+id, nil, true)
	return err
}
