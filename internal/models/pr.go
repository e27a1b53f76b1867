package models

// PullRequestInfo represents PR metadata
type PullRequestInfo struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"html_url"`
	User   string `json:"user"`
	State  string `json:"state"`
	Draft  bool   `json:"draft"`
}

// NewPullRequest is the payload for opening a PR
type NewPullRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Head  string `json:"head"`
	Base  string `json:"base"`
}

// User represents a GitHub user
type User struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Branch is the head of a branch and the tree it points at
type Branch struct {
	Name      string `json:"name"`
	CommitSHA string `json:"commit_sha"`
	TreeSHA   string `json:"tree_sha"`
}

// TreeEntry is one element of a git tree creation request
type TreeEntry struct {
	Path    string `json:"path"`
	Mode    string `json:"mode"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Commit is a created git commit
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Tree    struct {
		SHA string `json:"sha"`
	} `json:"tree"`
}
