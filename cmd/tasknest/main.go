// Package main provides the entry point for the TaskNest command-line client.
// It wires the configuration, credential store, request client and session
// manager together and dispatches the selected operation: login, logout,
// session status, registration, password change, or one of the resource
// listings.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/auth"
	"github.com/tasknest/tasknest-cli/internal/buildinfo"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/keystore"
	"github.com/tasknest/tasknest-cli/internal/logging"
	"github.com/tasknest/tasknest-cli/internal/tasknest"
	"golang.org/x/crypto/ssh/terminal"
)

var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = "config.yaml"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

// main parses command-line flags, loads configuration, and runs the selected
// operation.
func main() {
	var login bool
	var logout bool
	var status bool
	var register bool
	var confirm bool
	var changePassword bool
	var listProjects bool
	var mission bool
	var parseText string
	var configPath string

	flag.BoolVar(&login, "login", false, "Log in to TaskNest")
	flag.BoolVar(&logout, "logout", false, "Log out and clear stored credentials")
	flag.BoolVar(&status, "status", false, "Show session status")
	flag.BoolVar(&register, "register", false, "Register a new account")
	flag.BoolVar(&confirm, "confirm", false, "Confirm a registration with the emailed code")
	flag.BoolVar(&changePassword, "change-password", false, "Change the account password")
	flag.BoolVar(&listProjects, "projects", false, "List projects")
	flag.BoolVar(&mission, "mission", false, "Show the agent mission-control overview")
	flag.StringVar(&parseText, "parse", "", "Parse free-form text into a task draft")
	flag.StringVar(&configPath, "config", DefaultConfigPath, "Configure File Path")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to load .env file: %v", err)
	}

	cfg, err := config.LoadConfigOptional(configPath, true)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err = logging.ConfigureLogOutput(cfg); err != nil {
		log.Fatalf("failed to configure logging: %v", err)
	}

	creds, err := keystore.Open(cfg)
	if err != nil {
		log.Fatalf("failed to open credential store: %v", err)
	}
	client, err := api.New(cfg, creds)
	if err != nil {
		log.Fatalf("failed to create API client: %v", err)
	}
	manager := auth.NewManager(client, creds)

	ctx := logging.WithRequestID(context.Background(), logging.GenerateRequestID())

	switch {
	case login:
		runLogin(ctx, manager)
	case logout:
		manager.Logout(ctx)
		fmt.Println("Logged out.")
	case status:
		runStatus(ctx, manager, creds)
	case register:
		runRegister(ctx, manager)
	case confirm:
		runConfirm(ctx, manager)
	case changePassword:
		runChangePassword(ctx, manager)
	case listProjects:
		runProjects(ctx, manager, client)
	case mission:
		runMission(ctx, manager, client)
	case parseText != "":
		runParse(ctx, manager, client, parseText)
	default:
		fmt.Printf("TaskNest CLI Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		flag.Usage()
	}
}

func runLogin(ctx context.Context, manager *auth.Manager) {
	username := promptLine("Username: ")
	password := promptPassword("Password: ")

	result, err := manager.Login(ctx, username, password)
	if err != nil {
		failAuth(err)
	}

	for result.Outcome == auth.OutcomeChallenge {
		fmt.Printf("Verification required (%s).\n", result.Challenge.Kind)
		code := promptLine("Code: ")
		if result, err = manager.RespondToChallenge(ctx, code); err != nil {
			failAuth(err)
		}
	}
	fmt.Println("Logged in.")
}

func runStatus(ctx context.Context, manager *auth.Manager, creds *keystore.Store) {
	if !manager.SessionValid() {
		fmt.Println("Not logged in.")
		return
	}
	if !manager.Restore(ctx) {
		fmt.Println("Stored session is no longer valid.")
		return
	}
	email, _ := creds.UserEmail()
	fmt.Printf("Logged in as %s\n", email)
	if orgID, ok := creds.OrganizationID(); ok && orgID != "" {
		fmt.Printf("Active organization: %s\n", orgID)
	}
}

func runRegister(ctx context.Context, manager *auth.Manager) {
	username := promptLine("Username: ")
	email := promptLine("Email: ")
	password := promptPassword("Password: ")
	if err := manager.Register(ctx, username, email, password); err != nil {
		failAuth(err)
	}
	fmt.Println("Registered. Check your email for a confirmation code, then run -confirm.")
}

func runConfirm(ctx context.Context, manager *auth.Manager) {
	username := promptLine("Username: ")
	code := promptLine("Confirmation code: ")
	result, err := manager.ConfirmSignup(ctx, username, code)
	if err != nil {
		failAuth(err)
	}
	if manager.State() == auth.StateAuthenticated && result.Outcome == auth.OutcomeAuthenticated {
		fmt.Println("Confirmed and logged in.")
		return
	}
	fmt.Println("Confirmed. You can now log in.")
}

func runChangePassword(ctx context.Context, manager *auth.Manager) {
	previous := promptPassword("Current password: ")
	proposed := promptPassword("New password: ")
	if err := manager.ChangePassword(ctx, previous, proposed); err != nil {
		failAuth(err)
	}
	fmt.Println("Password changed.")
}

func runProjects(ctx context.Context, manager *auth.Manager, client *api.Client) {
	requireSession(manager)
	projects, err := tasknest.NewProjectService(client).List(ctx)
	if err != nil {
		failAuth(err)
	}
	for _, project := range projects {
		fmt.Printf("%-24s %s (%d tasks)\n", project.ID, project.Name, project.TaskCount)
	}
}

func runMission(ctx context.Context, manager *auth.Manager, client *api.Client) {
	requireSession(manager)
	overview, err := tasknest.NewAgentService(client).Overview(ctx)
	if err != nil {
		failAuth(err)
	}
	for _, summary := range overview.Agents {
		fmt.Printf("%s [%s] — %d tasks\n", summary.Agent.Name, summary.Agent.Status, len(summary.Tasks))
		for _, task := range summary.Tasks {
			fmt.Printf("    %-12s %s\n", task.Status, task.Title)
		}
	}
}

func runParse(ctx context.Context, manager *auth.Manager, client *api.Client, text string) {
	requireSession(manager)
	parsed, err := tasknest.NewParseService(client).ParseTask(ctx, text, "")
	if err != nil {
		failAuth(err)
	}
	fmt.Printf("Title:    %s\n", parsed.Title)
	if parsed.Notes != "" {
		fmt.Printf("Notes:    %s\n", parsed.Notes)
	}
	if parsed.Priority != "" {
		fmt.Printf("Priority: %s\n", parsed.Priority)
	}
	if parsed.DueDate != nil {
		fmt.Printf("Due:      %s\n", parsed.DueDate.Format("2006-01-02"))
	}
}

func requireSession(manager *auth.Manager) {
	if !manager.SessionValid() {
		fmt.Println("Not logged in. Run -login first.")
		os.Exit(1)
	}
}

func failAuth(err error) {
	if api.IsCancelled(err) {
		os.Exit(0)
	}
	log.Debugf("operation failed: %v", err)
	if apiErr, ok := api.AsError(err); ok && apiErr.Kind == api.KindServer {
		fmt.Println(apiErr.Message)
	} else {
		fmt.Println(auth.UserFriendlyMessage(err))
	}
	os.Exit(1)
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}
	return strings.TrimSpace(line)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := terminal.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatalf("failed to read password: %v", err)
	}
	return strings.TrimSpace(string(password))
}
