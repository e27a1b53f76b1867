package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cli/go-gh/v2/pkg/api"
	graphql "github.com/cli/shurcooL-graphql"
	"github.com/ryo246912/gh-bump-pr/internal/models"
	"github.com/ryo246912/gh-bump-pr/internal/tree"
)

const (
	blobMode = "100644"
	blobType = "blob"
)

// Client wraps GitHub API clients
type Client struct {
	rest *api.RESTClient
	gql  *api.GraphQLClient
}

// NewClient builds REST and GraphQL clients sharing the same options.
func NewClient(opts api.ClientOptions) (*Client, error) {
	restClient, err := api.NewRESTClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}

	gqlClient, err := api.NewGraphQLClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL client: %w", err)
	}

	return &Client{
		rest: restClient,
		gql:  gqlClient,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, response interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}
	if response == nil {
		var discard interface{}
		response = &discard
	}
	return c.rest.DoWithContext(ctx, method, path, body, response)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var httpErr *api.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// GetCurrentUserLogin fetches current user's login
func (c *Client) GetCurrentUserLogin(ctx context.Context) (string, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "user", nil, &user); err != nil {
		return "", fmt.Errorf("failed to fetch current user: %w", err)
	}
	return user.Login, nil
}

// GetBranch resolves a branch to its head commit and tree
func (c *Client) GetBranch(ctx context.Context, owner, repo, branch string) (models.Branch, error) {
	var resp struct {
		Name   string `json:"name"`
		Commit struct {
			SHA    string `json:"sha"`
			Commit struct {
				Tree struct {
					SHA string `json:"sha"`
				} `json:"tree"`
			} `json:"commit"`
		} `json:"commit"`
	}

	path := fmt.Sprintf("repos/%s/%s/branches/%s", owner, repo, branch)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return models.Branch{}, fmt.Errorf("failed to fetch branch %s: %w", branch, err)
	}

	return models.Branch{
		Name:      resp.Name,
		CommitSHA: resp.Commit.SHA,
		TreeSHA:   resp.Commit.Commit.Tree.SHA,
	}, nil
}

// BranchExists checks for refs/heads/<branch>
func (c *Client) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	path := fmt.Sprintf("repos/%s/%s/git/ref/heads/%s", owner, repo, branch)
	err := c.do(ctx, http.MethodGet, path, nil, nil)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up branch %s: %w", branch, err)
	}
}

// CreateBranch creates refs/heads/<branch> pointing at sha
func (c *Client) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	path := fmt.Sprintf("repos/%s/%s/git/refs", owner, repo)
	payload := map[string]interface{}{
		"ref": "refs/heads/" + branch,
		"sha": sha,
	}
	if err := c.do(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

// CreateTree uploads files as inline blobs on top of baseTree
func (c *Client) CreateTree(ctx context.Context, owner, repo, baseTree string, files []tree.FileEntry) (string, error) {
	entries := make([]models.TreeEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, models.TreeEntry{
			Path:    f.Path,
			Mode:    blobMode,
			Type:    blobType,
			Content: f.Content,
		})
	}

	payload := map[string]interface{}{
		"tree": entries,
	}
	if baseTree != "" {
		payload["base_tree"] = baseTree
	}

	var resp struct {
		SHA string `json:"sha"`
	}
	path := fmt.Sprintf("repos/%s/%s/git/trees", owner, repo)
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return "", fmt.Errorf("failed to create tree: %w", err)
	}
	return resp.SHA, nil
}

// CreateCommit creates a commit object; it does not move any branch
func (c *Client) CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (models.Commit, error) {
	payload := map[string]interface{}{
		"message": message,
		"tree":    treeSHA,
		"parents": parents,
	}

	var commit models.Commit
	path := fmt.Sprintf("repos/%s/%s/git/commits", owner, repo)
	if err := c.do(ctx, http.MethodPost, path, payload, &commit); err != nil {
		return models.Commit{}, fmt.Errorf("failed to create commit: %w", err)
	}
	return commit, nil
}

// UpdateBranch moves refs/heads/<branch> to sha
func (c *Client) UpdateBranch(ctx context.Context, owner, repo, branch, sha string, force bool) error {
	path := fmt.Sprintf("repos/%s/%s/git/refs/heads/%s", owner, repo, branch)
	payload := map[string]interface{}{
		"sha":   sha,
		"force": force,
	}
	if err := c.do(ctx, http.MethodPatch, path, payload, nil); err != nil {
		return fmt.Errorf("failed to update branch %s: %w", branch, err)
	}
	return nil
}

// FindOpenPR returns the open PR whose head is the given branch, or nil
func (c *Client) FindOpenPR(ctx context.Context, owner, repo, head string) (*models.PullRequestInfo, error) {
	var q struct {
		Repository struct {
			PullRequests struct {
				Nodes []struct {
					Number  int
					Title   string
					Body    string
					URL     string `graphql:"url"`
					State   string
					IsDraft bool
					Author  struct {
						Login string
					}
				}
			} `graphql:"pullRequests(headRefName: $head, states: OPEN, first: 1)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	variables := map[string]interface{}{
		"owner": graphql.String(owner),
		"name":  graphql.String(repo),
		"head":  graphql.String(head),
	}

	if err := c.gql.QueryWithContext(ctx, "OpenPullRequestForHead", &q, variables); err != nil {
		return nil, fmt.Errorf("failed to fetch pull requests: %w", err)
	}

	nodes := q.Repository.PullRequests.Nodes
	if len(nodes) == 0 {
		return nil, nil
	}
	pr := nodes[0]
	return &models.PullRequestInfo{
		Number: pr.Number,
		Title:  pr.Title,
		Body:   pr.Body,
		URL:    pr.URL,
		User:   pr.Author.Login,
		State:  pr.State,
		Draft:  pr.IsDraft,
	}, nil
}

type pullRequestResponse struct {
	Number  int         `json:"number"`
	Title   string      `json:"title"`
	Body    string      `json:"body"`
	HTMLURL string      `json:"html_url"`
	State   string      `json:"state"`
	Draft   bool        `json:"draft"`
	User    models.User `json:"user"`
}

func (r pullRequestResponse) info() *models.PullRequestInfo {
	return &models.PullRequestInfo{
		Number: r.Number,
		Title:  r.Title,
		Body:   r.Body,
		URL:    r.HTMLURL,
		User:   r.User.Login,
		State:  r.State,
		Draft:  r.Draft,
	}
}

// CreatePR opens a pull request
func (c *Client) CreatePR(ctx context.Context, owner, repo string, pr models.NewPullRequest) (*models.PullRequestInfo, error) {
	var resp pullRequestResponse
	path := fmt.Sprintf("repos/%s/%s/pulls", owner, repo)
	if err := c.do(ctx, http.MethodPost, path, pr, &resp); err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	return resp.info(), nil
}

// EditPR replaces the title and body of a pull request
func (c *Client) EditPR(ctx context.Context, owner, repo string, number int, title, body string) (*models.PullRequestInfo, error) {
	payload := map[string]interface{}{
		"title": title,
		"body":  body,
	}

	var resp pullRequestResponse
	path := fmt.Sprintf("repos/%s/%s/pulls/%d", owner, repo, number)
	if err := c.do(ctx, http.MethodPatch, path, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to update pull request #%d: %w", number, err)
	}
	return resp.info(), nil
}

// RequestReviewers sends review request to specified reviewers
func (c *Client) RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers []string) error {
	path := fmt.Sprintf("repos/%s/%s/pulls/%d/requested_reviewers", owner, repo, number)
	payload := map[string]interface{}{
		"reviewers": reviewers,
	}
	if err := c.do(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("failed to request reviewers: %w", err)
	}
	return nil
}
