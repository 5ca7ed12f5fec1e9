package tasknest

import (
	"context"
	"net/http"
	"time"

	"github.com/tasknest/tasknest-cli/internal/api"
	"golang.org/x/sync/errgroup"
)

// agentFetchLimit bounds how many per-agent task fetches run concurrently
// when assembling the mission-control overview.
const agentFetchLimit = 4

// AgentSummary pairs an agent with its current task list.
type AgentSummary struct {
	Agent Agent  `json:"agent"`
	Tasks []Task `json:"tasks"`
}

// MissionControl is the aggregated dashboard snapshot.
type MissionControl struct {
	Agents      []AgentSummary `json:"agents"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// AgentService wraps the agent endpoints and assembles the mission-control
// overview.
type AgentService struct {
	client *api.Client
}

// NewAgentService creates an agent service on top of the request client.
func NewAgentService(client *api.Client) *AgentService {
	return &AgentService{client: client}
}

// List fetches all agents visible to the active tenant.
func (s *AgentService) List(ctx context.Context) ([]Agent, error) {
	agents, err := api.Enveloped[[]Agent](ctx, s.client, http.MethodGet, "/agents", nil, true)
	if err != nil {
		return nil, err
	}
	return *agents, nil
}

// Tasks fetches the task list assigned to one agent.
func (s *AgentService) Tasks(ctx context.Context, agentID string) ([]Task, error) {
	tasks, err := api.Enveloped[[]Task](ctx, s.client, http.MethodGet, "/agents/"+agentID+"/tasks", nil, true)
	if err != nil {
		return nil, err
	}
	return *tasks, nil
}

// Overview fetches every agent and fans out the per-agent task fetches with
// bounded concurrency, collecting the results into a single snapshot. The
// first failure cancels the remaining fetches.
func (s *AgentService) Overview(ctx context.Context) (*MissionControl, error) {
	agents, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]AgentSummary, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(agentFetchLimit)
	for i, agent := range agents {
		i, agent := i, agent
		g.Go(func() error {
			tasks, errFetch := s.Tasks(gctx, agent.ID)
			if errFetch != nil {
				return errFetch
			}
			summaries[i] = AgentSummary{Agent: agent, Tasks: tasks}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	return &MissionControl{Agents: summaries, GeneratedAt: time.Now().UTC()}, nil
}
