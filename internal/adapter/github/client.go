package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	filesPerPage   = 100
)

// Client is an HTTP client for the GitHub endpoints this action uses.
// Failures are never retried: any API error aborts the run.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client authenticated with the given token, typically
// GITHUB_TOKEN from the Actions environment.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// ListPullRequestFiles fetches every file changed by the pull request,
// following pagination until the last page.
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]PullRequestFile, error) {
	var all []PullRequestFile
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files?per_page=%d&page=%d",
			c.baseURL, owner, repo, number, filesPerPage, page)

		var files []PullRequestFile
		if err := c.doJSON(ctx, http.MethodGet, url, nil, &files); err != nil {
			return nil, err
		}
		all = append(all, files...)
		if len(files) < filesPerPage {
			return all, nil
		}
	}
}

// CreateIssueComment posts a comment on the pull request's conversation
// thread.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*IssueComment, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.baseURL, owner, repo, number)

	var comment IssueComment
	payload := map[string]string{"body": body}
	if err := c.doJSON(ctx, http.MethodPost, url, payload, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreateCheckRun creates a completed check run, optionally with the first
// batch of annotations.
func (c *Client) CreateCheckRun(ctx context.Context, owner, repo string, input CreateCheckRunInput) (*CheckRun, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/check-runs", c.baseURL, owner, repo)

	var run CheckRun
	if err := c.doJSON(ctx, http.MethodPost, url, input, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// UpdateCheckRun attaches another annotation batch to an existing check run.
func (c *Client) UpdateCheckRun(ctx context.Context, owner, repo string, id int64, input UpdateCheckRunInput) (*CheckRun, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/check-runs/%d", c.baseURL, owner, repo, id)

	var run CheckRun
	if err := c.doJSON(ctx, http.MethodPatch, url, input, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// doJSON executes one authenticated request, mapping transport failures and
// non-2xx responses to *APIError and decoding the response body into out.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &APIError{Type: ErrTypeUnknown, Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Type: ErrTypeTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &APIError{
				Type:       ErrTypeUnknown,
				Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
				StatusCode: resp.StatusCode,
			}
		}
		return MapHTTPError(resp.StatusCode, bodyBytes)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
