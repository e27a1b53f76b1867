package github

import (
	"context"

	"github.com/ryo246912/gh-bump-pr/internal/models"
	"github.com/ryo246912/gh-bump-pr/internal/tree"
)

// GitHubClient defines the interface for GitHub operations
type GitHubClient interface {
	GetCurrentUserLogin(ctx context.Context) (string, error)
	GetBranch(ctx context.Context, owner, repo, branch string) (models.Branch, error)
	BranchExists(ctx context.Context, owner, repo, branch string) (bool, error)
	CreateBranch(ctx context.Context, owner, repo, branch, sha string) error
	CreateTree(ctx context.Context, owner, repo, baseTree string, files []tree.FileEntry) (string, error)
	CreateCommit(ctx context.Context, owner, repo, message, treeSHA string, parents []string) (models.Commit, error)
	UpdateBranch(ctx context.Context, owner, repo, branch, sha string, force bool) error
	FindOpenPR(ctx context.Context, owner, repo, head string) (*models.PullRequestInfo, error)
	CreatePR(ctx context.Context, owner, repo string, pr models.NewPullRequest) (*models.PullRequestInfo, error)
	EditPR(ctx context.Context, owner, repo string, number int, title, body string) (*models.PullRequestInfo, error)
	RequestReviewers(ctx context.Context, owner, repo string, number int, reviewers []string) error
}

// RepositoryInfo defines repository information interface
type RepositoryInfo interface {
	GetOwner() string
	GetName() string
}

// Ensure Client implements GitHubClient interface
var _ GitHubClient = (*Client)(nil)
