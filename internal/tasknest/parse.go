package tasknest

import (
	"context"
	"net/http"
	"strings"

	"github.com/tasknest/tasknest-cli/internal/api"
)

type parseTaskRequest struct {
	Text      string `json:"text"`
	ProjectID string `json:"project_id,omitempty"`
}

// ParseService wraps the AI-assisted task parsing endpoint, which turns a
// natural-language sentence into a structured task draft.
type ParseService struct {
	client *api.Client
}

// NewParseService creates a parse service on top of the request client.
func NewParseService(client *api.Client) *ParseService {
	return &ParseService{client: client}
}

// ParseTask submits free-form text and returns the structured task the
// backend extracted from it. projectID optionally scopes the parse to a
// project so the backend can resolve labels and assignees.
func (s *ParseService) ParseTask(ctx context.Context, text, projectID string) (*ParsedTask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, api.NewError(api.KindUnknown, "parse text is empty")
	}
	return api.EnvelopedBody[ParsedTask](ctx, s.client, http.MethodPost, "/ai/parse-task", parseTaskRequest{
		Text:      text,
		ProjectID: projectID,
	}, true)
}
