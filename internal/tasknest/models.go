// Package tasknest contains the typed models and resource services for the
// TaskNest backend: projects, tasks, teams, organizations, agents and
// AI-assisted task parsing. Services are thin fetch-and-cache wrappers over
// the request client; all decoding happens through the typed api helpers.
package tasknest

import "time"

// Task lifecycle states used by the Kanban board.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
	TaskStatusBlocked    = "blocked"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// User is an account on the backend.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Organization is a tenant the user belongs to.
type Organization struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	MemberCount int    `json:"member_count,omitempty"`
}

// Project groups tasks inside an organization.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Color          string    `json:"color,omitempty"`
	OrganizationID int       `json:"organization_id,omitempty"`
	TaskCount      int       `json:"task_count,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Task is a single unit of work.
type Task struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id,omitempty"`
	Title      string     `json:"title"`
	Notes      string     `json:"notes,omitempty"`
	Status     string     `json:"status"`
	Priority   string     `json:"priority,omitempty"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

// Team is a named group of members inside an organization.
type Team struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	OrganizationID int      `json:"organization_id,omitempty"`
	MemberIDs      []string `json:"member_ids,omitempty"`
}

// Agent is an automated worker surfaced on the mission-control dashboard.
type Agent struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Status       string     `json:"status,omitempty"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// ParsedTask is the structured result of AI-assisted task parsing.
type ParsedTask struct {
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	ProjectID string     `json:"project_id,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Labels    []string   `json:"labels,omitempty"`
}
