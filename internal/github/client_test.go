package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/google/go-cmp/cmp"
	"github.com/ryo246912/gh-bump-pr/internal/models"
	"github.com/ryo246912/gh-bump-pr/internal/tree"
)

// rewriteTransport sends every request to the test server instead of api.github.com
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	client, err := NewClient(api.ClientOptions{
		AuthToken:    "test-token",
		Host:         "github.com",
		Transport:    rewriteTransport{target: target},
		LogIgnoreEnv: true,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func decodeBody(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Errorf("failed to decode request body: %v", err)
	}
	return payload
}

func TestClient_GetCurrentUserLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); !strings.Contains(got, "test-token") {
			t.Errorf("Authorization = %q", got)
		}
		writeJSON(w, http.StatusOK, `{"login": "releaser", "type": "User"}`)
	})

	login, err := client.GetCurrentUserLogin(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentUserLogin() error = %v", err)
	}
	if login != "releaser" {
		t.Errorf("GetCurrentUserLogin() = %q, want %q", login, "releaser")
	}
}

func TestClient_GetBranch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/branches/main" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, `{
			"name": "main",
			"commit": {"sha": "abc123", "commit": {"tree": {"sha": "tree456"}}}
		}`)
	})

	got, err := client.GetBranch(context.Background(), "owner", "repo", "main")
	if err != nil {
		t.Fatalf("GetBranch() error = %v", err)
	}
	want := models.Branch{Name: "main", CommitSHA: "abc123", TreeSHA: "tree456"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetBranch() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_BranchExists(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expected    bool
		expectError bool
	}{
		{
			name:     "existing ref",
			status:   http.StatusOK,
			body:     `{"ref": "refs/heads/bump-new-version", "object": {"sha": "abc"}}`,
			expected: true,
		},
		{
			name:     "missing ref",
			status:   http.StatusNotFound,
			body:     `{"message": "Not Found"}`,
			expected: false,
		},
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			body:        `{"message": "boom"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/repos/owner/repo/git/ref/heads/bump-new-version" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				writeJSON(w, tt.status, tt.body)
			})

			got, err := client.BranchExists(context.Background(), "owner", "repo", "bump-new-version")
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("BranchExists() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClient_CreateBranch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/owner/repo/git/refs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		payload := decodeBody(t, r)
		if payload["ref"] != "refs/heads/bump-new-version" || payload["sha"] != "abc123" {
			t.Errorf("unexpected payload %v", payload)
		}
		writeJSON(w, http.StatusCreated, `{"ref": "refs/heads/bump-new-version"}`)
	})

	if err := client.CreateBranch(context.Background(), "owner", "repo", "bump-new-version", "abc123"); err != nil {
		t.Fatalf("CreateBranch() error = %v", err)
	}
}

func TestClient_CreateTree(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/owner/repo/git/trees" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			BaseTree string             `json:"base_tree"`
			Tree     []models.TreeEntry `json:"tree"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if payload.BaseTree != "base789" {
			t.Errorf("base_tree = %q", payload.BaseTree)
		}
		want := []models.TreeEntry{
			{Path: ".changesets/a.toml", Mode: "100644", Type: "blob", Content: "[changeset]\n"},
			{Path: "CHANGELOG.md", Mode: "100644", Type: "blob", Content: "# Changelog\n"},
		}
		if diff := cmp.Diff(want, payload.Tree); diff != "" {
			t.Errorf("tree mismatch (-want +got):\n%s", diff)
		}
		writeJSON(w, http.StatusCreated, `{"sha": "newtree"}`)
	})

	sha, err := client.CreateTree(context.Background(), "owner", "repo", "base789", []tree.FileEntry{
		{Path: ".changesets/a.toml", Content: "[changeset]\n"},
		{Path: "CHANGELOG.md", Content: "# Changelog\n"},
	})
	if err != nil {
		t.Fatalf("CreateTree() error = %v", err)
	}
	if sha != "newtree" {
		t.Errorf("CreateTree() = %q, want %q", sha, "newtree")
	}
}

func TestClient_CreateCommitAndUpdateBranch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/repos/owner/repo/git/commits":
			payload := decodeBody(t, r)
			if payload["tree"] != "newtree" {
				t.Errorf("tree = %v", payload["tree"])
			}
			if diff := cmp.Diff([]interface{}{"abc123"}, payload["parents"]); diff != "" {
				t.Errorf("parents mismatch (-want +got):\n%s", diff)
			}
			writeJSON(w, http.StatusCreated, `{"sha": "commit1", "message": "bump", "tree": {"sha": "newtree"}}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/repos/owner/repo/git/refs/heads/bump-new-version":
			payload := decodeBody(t, r)
			if payload["sha"] != "commit1" || payload["force"] != true {
				t.Errorf("unexpected payload %v", payload)
			}
			writeJSON(w, http.StatusOK, `{"ref": "refs/heads/bump-new-version"}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	commit, err := client.CreateCommit(ctx, "owner", "repo", "bump", "newtree", []string{"abc123"})
	if err != nil {
		t.Fatalf("CreateCommit() error = %v", err)
	}
	if commit.SHA != "commit1" || commit.Tree.SHA != "newtree" {
		t.Errorf("CreateCommit() = %+v", commit)
	}
	if err := client.UpdateBranch(ctx, "owner", "repo", "bump-new-version", commit.SHA, true); err != nil {
		t.Fatalf("UpdateBranch() error = %v", err)
	}
}

func TestClient_FindOpenPR(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected *models.PullRequestInfo
	}{
		{
			name: "open PR exists",
			response: `{"data": {"repository": {"pullRequests": {"nodes": [
				{"number": 7, "title": "Release v1.0.0", "body": "# Changelog\n", "url": "https://github.com/owner/repo/pull/7",
				 "state": "OPEN", "isDraft": false, "author": {"login": "releaser"}}
			]}}}}`,
			expected: &models.PullRequestInfo{
				Number: 7,
				Title:  "Release v1.0.0",
				Body:   "# Changelog\n",
				URL:    "https://github.com/owner/repo/pull/7",
				User:   "releaser",
				State:  "OPEN",
			},
		},
		{
			name:     "no open PR",
			response: `{"data": {"repository": {"pullRequests": {"nodes": []}}}}`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/graphql" {
					http.NotFound(w, r)
					return
				}
				var req struct {
					Query     string                 `json:"query"`
					Variables map[string]interface{} `json:"variables"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode: %v", err)
					return
				}
				if !strings.Contains(req.Query, "pullRequests(headRefName: $head, states: OPEN, first: 1)") {
					t.Errorf("unexpected query %s", req.Query)
				}
				if req.Variables["head"] != "bump-new-version" || req.Variables["owner"] != "owner" {
					t.Errorf("unexpected variables %v", req.Variables)
				}
				writeJSON(w, http.StatusOK, tt.response)
			})

			got, err := client.FindOpenPR(context.Background(), "owner", "repo", "bump-new-version")
			if err != nil {
				t.Fatalf("FindOpenPR() error = %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("FindOpenPR() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClient_CreateAndEditPR(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/repos/owner/repo/pulls":
			payload := decodeBody(t, r)
			if payload["head"] != "bump-new-version" || payload["base"] != "main" {
				t.Errorf("unexpected payload %v", payload)
			}
			writeJSON(w, http.StatusCreated, `{"number": 12, "title": "Release v1.2.0", "html_url": "https://github.com/owner/repo/pull/12",
				"state": "open", "user": {"login": "releaser", "type": "User"}}`)
		case r.Method == http.MethodPatch && r.URL.Path == "/repos/owner/repo/pulls/12":
			payload := decodeBody(t, r)
			if payload["title"] != "Release v1.3.0" {
				t.Errorf("unexpected payload %v", payload)
			}
			writeJSON(w, http.StatusOK, `{"number": 12, "title": "Release v1.3.0", "html_url": "https://github.com/owner/repo/pull/12",
				"state": "open", "user": {"login": "releaser", "type": "User"}}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	created, err := client.CreatePR(ctx, "owner", "repo", models.NewPullRequest{
		Title: "Release v1.2.0",
		Body:  "# Changelog\n",
		Head:  "bump-new-version",
		Base:  "main",
	})
	if err != nil {
		t.Fatalf("CreatePR() error = %v", err)
	}
	if created.Number != 12 || created.User != "releaser" || created.URL != "https://github.com/owner/repo/pull/12" {
		t.Errorf("CreatePR() = %+v", created)
	}

	edited, err := client.EditPR(ctx, "owner", "repo", 12, "Release v1.3.0", "# Changelog\n")
	if err != nil {
		t.Fatalf("EditPR() error = %v", err)
	}
	if edited.Title != "Release v1.3.0" {
		t.Errorf("EditPR() title = %q", edited.Title)
	}
}

func TestClient_RequestReviewers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/repos/owner/repo/pulls/12/requested_reviewers" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		payload := decodeBody(t, r)
		if diff := cmp.Diff([]interface{}{"alice", "bob"}, payload["reviewers"]); diff != "" {
			t.Errorf("reviewers mismatch (-want +got):\n%s", diff)
		}
		writeJSON(w, http.StatusUnprocessableEntity, `{"message": "Reviews may only be requested from collaborators."}`)
	})

	err := client.RequestReviewers(context.Background(), "owner", "repo", 12, []string{"alice", "bob"})
	if err == nil {
		t.Fatal("Expected error but got none")
	}
	if !strings.Contains(err.Error(), "failed to request reviewers") {
		t.Errorf("unexpected error: %v", err)
	}
}
