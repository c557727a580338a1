// Package gitlab provides a minimal client for the GitLab REST API,
// covering merge request metadata and diff retrieval.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://gitlab.com/api/v4"

// Client accesses one project's merge requests via the GitLab v4 API.
type Client struct {
	projectID string
	token     string
	baseURL   string
	httpCli   *http.Client
}

// NewClient creates a client for the given project. An empty baseURL uses
// gitlab.com; an empty token sends unauthenticated requests (public
// projects only).
func NewClient(baseURL, projectID, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		projectID: projectID,
		token:     token,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpCli:   &http.Client{Timeout: 60 * time.Second},
	}
}

// MergeRequest is the subset of MR metadata the review pipeline needs.
type MergeRequest struct {
	IID          int    `json:"iid"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	State        string `json:"state"`
	SourceBranch string `json:"source_branch"`
	TargetBranch string `json:"target_branch"`
	SHA          string `json:"sha"`
	WebURL       string `json:"web_url"`
}

// GetMergeRequest fetches merge request metadata.
func (c *Client) GetMergeRequest(ctx context.Context, iid int) (MergeRequest, error) {
	url := fmt.Sprintf("%s/projects/%s/merge_requests/%d", c.baseURL, c.projectID, iid)
	body, err := c.get(ctx, url)
	if err != nil {
		return MergeRequest{}, err
	}
	var mr MergeRequest
	if err := json.Unmarshal(body, &mr); err != nil {
		return MergeRequest{}, fmt.Errorf("parsing merge request: %w", err)
	}
	return mr, nil
}

// change is one file entry from the diffs endpoint.
type change struct {
	OldPath     string `json:"old_path"`
	NewPath     string `json:"new_path"`
	Diff        string `json:"diff"`
	NewFile     bool   `json:"new_file"`
	DeletedFile bool   `json:"deleted_file"`
	RenamedFile bool   `json:"renamed_file"`
}

// GetDiff fetches the merge request changes and assembles them into one
// unified diff. If the response is not the expected JSON shape the raw
// body is returned as-is.
func (c *Client) GetDiff(ctx context.Context, iid int) (string, error) {
	url := fmt.Sprintf("%s/projects/%s/merge_requests/%d/diffs", c.baseURL, c.projectID, iid)
	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}

	var changes []change
	if err := json.Unmarshal(body, &changes); err != nil {
		return string(body), nil
	}

	var b strings.Builder
	for _, ch := range changes {
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", ch.OldPath, ch.NewPath)
		switch {
		case ch.NewFile:
			fmt.Fprintf(&b, "--- /dev/null\n+++ b/%s\n", ch.NewPath)
		case ch.DeletedFile:
			fmt.Fprintf(&b, "--- a/%s\n+++ /dev/null\n", ch.OldPath)
		default:
			fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", ch.OldPath, ch.NewPath)
		}
		b.WriteString(ch.Diff)
		if !strings.HasSuffix(ch.Diff, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling GitLab: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == 404:
		return nil, fmt.Errorf("not found in project %s: %s", c.projectID, url)
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return nil, fmt.Errorf("GitLab authentication failed: %s", string(body))
	case resp.StatusCode != 200:
		return nil, fmt.Errorf("GitLab API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
