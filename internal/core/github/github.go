// Package github talks to GitHub pull requests through the gh CLI.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hay-kot/hunk/internal/core/viewsync"
	"github.com/hay-kot/hunk/pkg/executil"
)

// ErrInvalidPR is returned for pull request references that cannot be parsed.
var ErrInvalidPR = errors.New("invalid pull request reference")

// ParsePRInput accepts "123", "#123" or a pull request URL such as
// "https://github.com/owner/repo/pull/123/files".
func ParsePRInput(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPR
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidPR, s)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i+1 < len(parts); i++ {
			if parts[i] == "pull" {
				return parseNumber(parts[i+1], s)
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrInvalidPR, s)
	}

	return parseNumber(strings.TrimPrefix(s, "#"), s)
}

func parseNumber(s, orig string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPR, orig)
	}
	return n, nil
}

// PR is the pull request metadata hunk uses.
type PR struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	State       string `json:"state"`
	HeadRefName string `json:"headRefName"`
	BaseRefName string `json:"baseRefName"`
}

const prFields = "id,number,url,title,state,headRefName,baseRefName"

// Client runs gh in a repository directory.
type Client struct {
	ghPath string
	dir    string
	exec   executil.Executor
}

// NewClient creates a client that runs ghPath inside dir.
func NewClient(ghPath, dir string, exec executil.Executor) *Client {
	return &Client{ghPath: ghPath, dir: dir, exec: exec}
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	out, err := c.exec.RunDir(ctx, c.dir, c.ghPath, args...)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// classify marks failures that retrying cannot fix.
func classify(err error) error {
	msg := err.Error()
	for _, s := range []string{"HTTP 401", "HTTP 403", "HTTP 404", "GraphQL:", "Could not resolve", "gh auth login"} {
		if strings.Contains(msg, s) {
			return viewsync.Permanent(err)
		}
	}
	return err
}

// View returns pull request metadata.
func (c *Client) View(ctx context.Context, number int) (PR, error) {
	out, err := c.run(ctx, "pr", "view", strconv.Itoa(number), "--json", prFields)
	if err != nil {
		return PR{}, fmt.Errorf("gh pr view: %w", err)
	}

	var pr PR
	if err := json.Unmarshal(out, &pr); err != nil {
		return PR{}, fmt.Errorf("decode pr %d: %w", number, err)
	}
	if pr.ID == "" {
		return PR{}, fmt.Errorf("gh pr view: pull request %d has no id", number)
	}
	return pr, nil
}

// Diff returns the pull request's unified diff.
func (c *Client) Diff(ctx context.Context, number int) (string, error) {
	out, err := c.run(ctx, "pr", "diff", strconv.Itoa(number), "--color=never")
	if err != nil {
		return "", fmt.Errorf("gh pr diff: %w", err)
	}
	return string(out), nil
}

const viewedQuery = `query($id: ID!, $cursor: String) {
  node(id: $id) {
    ... on PullRequest {
      files(first: 100, after: $cursor) {
        nodes { path viewerViewedState }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

type viewedResponse struct {
	Data struct {
		Node struct {
			Files struct {
				Nodes []struct {
					Path  string `json:"path"`
					State string `json:"viewerViewedState"`
				} `json:"nodes"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"files"`
		} `json:"node"`
	} `json:"data"`
}

// maxFilePages bounds pagination; GitHub caps pull requests at 3000 files.
const maxFilePages = 30

// ViewedFiles returns the paths the authenticated user marked as viewed.
func (c *Client) ViewedFiles(ctx context.Context, prID string) ([]string, error) {
	var (
		paths  []string
		cursor string
	)

	for page := 0; page < maxFilePages; page++ {
		args := []string{"api", "graphql", "-f", "query=" + viewedQuery, "-f", "id=" + prID}
		if cursor != "" {
			args = append(args, "-f", "cursor="+cursor)
		}

		out, err := c.run(ctx, args...)
		if err != nil {
			return nil, fmt.Errorf("gh api graphql: %w", err)
		}

		var resp viewedResponse
		if err := json.Unmarshal(out, &resp); err != nil {
			return nil, fmt.Errorf("decode viewed files: %w", err)
		}

		files := resp.Data.Node.Files
		for _, n := range files.Nodes {
			if n.State == "VIEWED" {
				paths = append(paths, n.Path)
			}
		}

		if !files.PageInfo.HasNextPage || files.PageInfo.EndCursor == "" {
			return paths, nil
		}
		cursor = files.PageInfo.EndCursor
	}
	return paths, nil
}

const (
	markViewedMutation = `mutation($id: ID!, $path: String!) {
  markFileAsViewed(input: {pullRequestId: $id, path: $path}) { clientMutationId }
}`
	unmarkViewedMutation = `mutation($id: ID!, $path: String!) {
  unmarkFileAsViewed(input: {pullRequestId: $id, path: $path}) { clientMutationId }
}`
)

// SetViewed marks or unmarks path as viewed.
func (c *Client) SetViewed(ctx context.Context, prID, path string, viewed bool) error {
	mutation := markViewedMutation
	if !viewed {
		mutation = unmarkViewedMutation
	}
	if _, err := c.run(ctx, "api", "graphql", "-f", "query="+mutation, "-f", "id="+prID, "-f", "path="+path); err != nil {
		return fmt.Errorf("gh api graphql: %w", err)
	}
	return nil
}

// ViewedRemote binds a client to one pull request as a viewed-status remote.
type ViewedRemote struct {
	client *Client
	prID   string
}

var _ viewsync.Remote = (*ViewedRemote)(nil)

// NewViewedRemote returns the viewed-status remote for pr.
func NewViewedRemote(client *Client, pr PR) *ViewedRemote {
	return &ViewedRemote{client: client, prID: pr.ID}
}

func (r *ViewedRemote) FetchViewed(ctx context.Context) ([]string, error) {
	return r.client.ViewedFiles(ctx, r.prID)
}

func (r *ViewedRemote) SetViewed(ctx context.Context, path string, viewed bool) error {
	return r.client.SetViewed(ctx, r.prID, path, viewed)
}
