// Package tasknest provides the public SDK surface of the TaskNest client.
//
// It re-exports the request client, session manager, credential store and
// resource services so external projects can embed the client without
// importing internal packages.
package tasknest

import (
	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/auth"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/keystore"
	"github.com/tasknest/tasknest-cli/internal/tasknest"
)

type Config = config.Config

type Client = api.Client
type APIError = api.Error
type CredentialSource = api.CredentialSource

type Manager = auth.Manager
type Challenge = auth.Challenge
type State = auth.State
type Result = auth.Result

type Store = keystore.Store
type Bundle = keystore.Bundle

type Project = tasknest.Project
type Task = tasknest.Task
type Team = tasknest.Team
type Organization = tasknest.Organization
type Agent = tasknest.Agent
type ParsedTask = tasknest.ParsedTask
type MissionControl = tasknest.MissionControl

func LoadConfig(configFile string) (*Config, error) { return config.LoadConfig(configFile) }

func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	return config.LoadConfigOptional(configFile, optional)
}

func OpenStore(cfg *Config) (*Store, error) { return keystore.Open(cfg) }

func NewClient(cfg *Config, creds CredentialSource) (*Client, error) { return api.New(cfg, creds) }

func NewManager(client *Client, creds *Store) *Manager { return auth.NewManager(client, creds) }

func NewProjectService(client *Client) *tasknest.ProjectService {
	return tasknest.NewProjectService(client)
}

func NewTaskService(client *Client) *tasknest.TaskService { return tasknest.NewTaskService(client) }

func NewTeamService(client *Client) *tasknest.TeamService { return tasknest.NewTeamService(client) }

func NewOrganizationService(client *Client, creds *Store) *tasknest.OrganizationService {
	return tasknest.NewOrganizationService(client, creds)
}

func NewAgentService(client *Client) *tasknest.AgentService { return tasknest.NewAgentService(client) }

func NewParseService(client *Client) *tasknest.ParseService { return tasknest.NewParseService(client) }
