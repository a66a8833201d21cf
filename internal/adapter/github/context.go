package github

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Context is the ambient GitHub Actions execution context: repository
// coordinates, commit, triggering event, and the checkout workspace.
type Context struct {
	Owner      string
	Repo       string
	SHA        string
	EventName  string
	PullNumber int
	Workspace  string
}

// IsPullRequest reports whether the workflow was triggered by a
// pull-request event.
func (c Context) IsPullRequest() bool {
	return c.EventName == "pull_request" || c.EventName == "pull_request_target"
}

// eventPayload is the subset of the workflow event payload this action
// reads.
type eventPayload struct {
	PullRequest *struct {
		Number int `json:"number"`
		Head   struct {
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
}

// LoadContext reads the execution context from the standard GITHUB_*
// environment variables. When an event payload file is present, its
// pull-request number and head SHA take precedence over GITHUB_SHA.
func LoadContext() (Context, error) {
	repository := os.Getenv("GITHUB_REPOSITORY")
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return Context{}, fmt.Errorf("GITHUB_REPOSITORY must be set to owner/repo, got %q", repository)
	}

	ctx := Context{
		Owner:     owner,
		Repo:      repo,
		SHA:       os.Getenv("GITHUB_SHA"),
		EventName: os.Getenv("GITHUB_EVENT_NAME"),
		Workspace: os.Getenv("GITHUB_WORKSPACE"),
	}

	if path := os.Getenv("GITHUB_EVENT_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Context{}, fmt.Errorf("read event payload: %w", err)
		}
		var payload eventPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return Context{}, fmt.Errorf("parse event payload: %w", err)
		}
		if payload.PullRequest != nil {
			ctx.PullNumber = payload.PullRequest.Number
			if payload.PullRequest.Head.SHA != "" {
				ctx.SHA = payload.PullRequest.Head.SHA
			}
		}
	}

	return ctx, nil
}
