package github

import (
	"context"
	"fmt"

	"github.com/ryo246912/gh-bump-pr/internal/models"
	"github.com/ryo246912/gh-bump-pr/internal/tree"
)

// MockClient implements GitHubClient for testing. It keeps an in-memory view
// of branches and open pull requests so repeated runs can be observed.
type MockClient struct {
	// Control test behavior
	CurrentUser           string
	CurrentUserError      error
	Branches              map[string]models.Branch
	GetBranchError        error
	CreateBranchError     error
	CreateTreeError       error
	CreateCommitError     error
	UpdateBranchError     error
	FindOpenPRError       error
	CreatePRError         error
	EditPRError           error
	RequestReviewersError error

	// Open pull requests keyed by head branch
	OpenPRs map[string]*models.PullRequestInfo

	// Track method calls
	CreatedBranches        []string
	CreateTreeCalled       bool
	CreateCommitCalled     bool
	UpdateBranchCalled     bool
	CreatePRCalls          int
	EditPRCalls            int
	RequestReviewersCalled bool

	// Store call arguments for verification
	LastOwner         string
	LastRepo          string
	LastBaseTree      string
	LastTreeFiles     []tree.FileEntry
	LastCommitMessage string
	LastParents       []string
	LastForce         bool
	LastPRNumber      int
	LastReviewers     []string

	trees   int
	commits int
	prs     int
}

// NewMockClient returns a mock whose repository holds the given branches
func NewMockClient(user string, branches ...models.Branch) *MockClient {
	m := &MockClient{
		CurrentUser: user,
		Branches:    make(map[string]models.Branch),
		OpenPRs:     make(map[string]*models.PullRequestInfo),
	}
	for _, b := range branches {
		m.Branches[b.Name] = b
	}
	return m
}

func (m *MockClient) track(owner, repo string) {
	m.LastOwner = owner
	m.LastRepo = repo
	if m.Branches == nil {
		m.Branches = make(map[string]models.Branch)
	}
	if m.OpenPRs == nil {
		m.OpenPRs = make(map[string]*models.PullRequestInfo)
	}
}

// GetCurrentUserLogin mocks the GitHub API call
func (m *MockClient) GetCurrentUserLogin(ctx context.Context) (string, error) {
	return m.CurrentUser, m.CurrentUserError
}

// GetBranch mocks the branch lookup
func (m *MockClient) GetBranch(ctx context.Context, owner, repo, branch string) (models.Branch, error) {
	m.track(owner, repo)
	if m.GetBranchError != nil {
		return models.Branch{}, m.GetBranchError
	}
	b, ok := m.Branches[branch]
	if !ok {
		return models.Branch{}, NewAPIError(fmt.Sprintf("branch %s not found", branch))
	}
	return b, nil
}

// BranchExists mocks the ref lookup
func (m *MockClient) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	m.track(owner, repo)
	_, ok := m.Branches[branch]
	return ok, nil
}

// CreateBranch mocks ref creation
func (m *MockClient) CreateBranch(ctx context.Context, owner, repo, branch, sha string) error {
	m.track(owner, repo)
	if m.CreateBranchError != nil {
		return m.CreateBranchError
	}
	if _, ok := m.Branches[branch]; ok {
		return NewAPIError("Reference already exists")
	}
	m.CreatedBranches = append(m.CreatedBranches, branch)
	m.Branches[branch] = models.Branch{Name: branch, CommitSHA: sha}
	return nil
}

// CreateTree mocks tree creation
func (m *MockClient) CreateTree(ctx context.Context, owner, repo, baseTree string, files []tree.FileEntry) (string, error) {
	m.track(owner, repo)
	m.CreateTreeCalled = true
	m.LastBaseTree = baseTree
	m.LastTreeFiles = files
	if m.CreateTreeError != nil {
		return "", m.CreateTreeError
	}
	m.trees++
	return fmt.Sprintf("tree-%d", m.trees), nil
}

// CreateCommit mocks commit creation
func (m *MockClient) CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (models.Commit, error) {
	m.track(owner, repo)
	m.CreateCommitCalled = true
	m.LastCommitMessage = message
	m.LastParents = parents
	if m.CreateCommitError != nil {
		return models.Commit{}, m.CreateCommitError
	}
	m.commits++
	commit := models.Commit{SHA: fmt.Sprintf("commit-%d", m.commits), Message: message}
	commit.Tree.SHA = treeSHA
	return commit, nil
}

// UpdateBranch mocks moving a ref
func (m *MockClient) UpdateBranch(ctx context.Context, owner, repo, branch, sha string, force bool) error {
	m.track(owner, repo)
	m.UpdateBranchCalled = true
	m.LastForce = force
	if m.UpdateBranchError != nil {
		return m.UpdateBranchError
	}
	b, ok := m.Branches[branch]
	if !ok {
		return NewAPIError("Reference does not exist")
	}
	b.CommitSHA = sha
	m.Branches[branch] = b
	return nil
}

// FindOpenPR mocks the GraphQL lookup
func (m *MockClient) FindOpenPR(ctx context.Context, owner, repo, head string) (*models.PullRequestInfo, error) {
	m.track(owner, repo)
	if m.FindOpenPRError != nil {
		return nil, m.FindOpenPRError
	}
	return m.OpenPRs[head], nil
}

// CreatePR mocks PR creation; like GitHub it refuses a second open PR for a head
func (m *MockClient) CreatePR(ctx context.Context, owner, repo string, pr models.NewPullRequest) (*models.PullRequestInfo, error) {
	m.track(owner, repo)
	m.CreatePRCalls++
	if m.CreatePRError != nil {
		return nil, m.CreatePRError
	}
	if _, ok := m.OpenPRs[pr.Head]; ok {
		return nil, NewAPIError(fmt.Sprintf("A pull request already exists for %s:%s", owner, pr.Head))
	}
	m.prs++
	info := &models.PullRequestInfo{
		Number: m.prs,
		Title:  pr.Title,
		Body:   pr.Body,
		URL:    fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, m.prs),
		User:   m.CurrentUser,
		State:  "open",
	}
	m.OpenPRs[pr.Head] = info
	return info, nil
}

// EditPR mocks PR update
func (m *MockClient) EditPR(ctx context.Context, owner, repo string, number int, title, body string) (*models.PullRequestInfo, error) {
	m.track(owner, repo)
	m.EditPRCalls++
	m.LastPRNumber = number
	if m.EditPRError != nil {
		return nil, m.EditPRError
	}
	for _, pr := range m.OpenPRs {
		if pr.Number == number {
			pr.Title = title
			pr.Body = body
			return pr, nil
		}
	}
	return nil, NewAPIError(fmt.Sprintf("pull request #%d not found", number))
}

// RequestReviewers mocks the review request API call
func (m *MockClient) RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers []string) error {
	m.track(owner, repo)
	m.RequestReviewersCalled = true
	m.LastPRNumber = number
	m.LastReviewers = reviewers
	return m.RequestReviewersError
}

// OpenPRCount returns how many PRs are open for head
func (m *MockClient) OpenPRCount(head string) int {
	if _, ok := m.OpenPRs[head]; ok {
		return 1
	}
	return 0
}

// MockRepository implements repository information for testing
type MockRepository struct {
	Owner string
	Name  string
}

func (m *MockRepository) GetOwner() string {
	return m.Owner
}

func (m *MockRepository) GetName() string {
	return m.Name
}

// Error helpers for testing error conditions
func NewAPIError(message string) error {
	return fmt.Errorf("API error: %s", message)
}

func NewNetworkError() error {
	return fmt.Errorf("network connection failed")
}
