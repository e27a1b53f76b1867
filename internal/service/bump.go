package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/ryo246912/gh-bump-pr/internal/changelog"
	"github.com/ryo246912/gh-bump-pr/internal/codeowners"
	"github.com/ryo246912/gh-bump-pr/internal/github"
	"github.com/ryo246912/gh-bump-pr/internal/models"
	"github.com/ryo246912/gh-bump-pr/internal/tree"
	"github.com/ryo246912/gh-bump-pr/internal/ui"
)

const (
	// DefaultBumpBranch stages the automated version bump
	DefaultBumpBranch = "bump-new-version"

	// CommitMessage is used for every bump commit
	CommitMessage = "Bump new project version using automatic Sempyver"
)

// ErrCancelled is returned when the user declines the push
var ErrCancelled = errors.New("push cancelled")

// Options controls a single run
type Options struct {
	Root             string
	ChangelogPath    string
	TitlePrefix      string
	BaseBranch       string
	BumpBranch       string
	Excludes         []string
	AssignCodeOwners bool
	DryRun           bool
	Confirm          bool
	Out              io.Writer
}

// Result reports what a run did
type Result struct {
	Files        int
	Section      changelog.Section
	CommitSHA    string
	PullRequest  *models.PullRequestInfo
	Created      bool
	Reviewers    []string
	ReviewersErr error
	DryRun       bool
}

// BumpService contains the business logic
type BumpService struct {
	client   github.GitHubClient
	repo     github.RepositoryInfo
	prompter ui.Prompter
}

// NewBumpService creates a new service instance
func NewBumpService(client github.GitHubClient, repo github.RepositoryInfo, prompter ui.Prompter) *BumpService {
	return &BumpService{
		client:   client,
		repo:     repo,
		prompter: prompter,
	}
}

// Run handles the complete workflow: collect, commit, open or update the PR,
// then request reviews from code owners.
func (s *BumpService) Run(ctx context.Context, opts Options) (*Result, error) {
	log := clog.FromContext(ctx)
	opts = withDefaults(opts)

	files, err := tree.Collect(opts.Root, tree.WithExcludes(opts.Excludes...))
	if err != nil {
		return nil, fmt.Errorf("failed to collect files: %w", err)
	}
	entries := files.Sorted()
	log.With("root", opts.Root).Infof("Collected %d files", len(entries))

	section, err := changelog.ReadFile(s.changelogPath(opts), opts.TitlePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to read changelog: %w", err)
	}
	log.With("version", section.Version).Infof("Latest changelog section: %s", section.Title)

	result := &Result{Files: len(entries), Section: section}

	plan := ui.FormatPlan(ui.Plan{
		Repository: s.repo.GetOwner() + "/" + s.repo.GetName(),
		Base:       opts.BaseBranch,
		Head:       opts.BumpBranch,
		Title:      section.Title,
		Body:       section.Body,
		Files:      entries,
	})

	if opts.DryRun {
		fmt.Fprint(opts.Out, plan)
		result.DryRun = true
		return result, nil
	}

	if opts.Confirm {
		confirmed, err := s.prompter.ConfirmPush(plan)
		if err != nil {
			return nil, fmt.Errorf("failed to confirm push: %w", err)
		}
		if !confirmed {
			return nil, ErrCancelled
		}
	}

	result.CommitSHA, err = s.pushCommit(ctx, opts, entries)
	if err != nil {
		return nil, err
	}

	result.PullRequest, result.Created, err = s.upsertPullRequest(ctx, opts, section)
	if err != nil {
		return nil, err
	}

	if opts.AssignCodeOwners {
		result.Reviewers, result.ReviewersErr = s.requestOwnerReviews(ctx, opts.Root, result.PullRequest)
		if result.ReviewersErr != nil {
			log.Warnf("Could not request code owner reviews: %v", result.ReviewersErr)
		}
	}

	return result, nil
}

func withDefaults(opts Options) Options {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.ChangelogPath == "" {
		opts.ChangelogPath = changelog.DefaultPath
	}
	if opts.BumpBranch == "" {
		opts.BumpBranch = DefaultBumpBranch
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return opts
}

func (s *BumpService) changelogPath(opts Options) string {
	if filepath.IsAbs(opts.ChangelogPath) {
		return opts.ChangelogPath
	}
	return filepath.Join(opts.Root, opts.ChangelogPath)
}

// pushCommit commits files on top of the base branch and force-moves the bump
// branch to that commit, creating the branch first if needed.
func (s *BumpService) pushCommit(ctx context.Context, opts Options, files []tree.FileEntry) (string, error) {
	log := clog.FromContext(ctx)
	owner, name := s.repo.GetOwner(), s.repo.GetName()

	base, err := s.client.GetBranch(ctx, owner, name, opts.BaseBranch)
	if err != nil {
		return "", fmt.Errorf("failed to get base branch: %w", err)
	}

	exists, err := s.client.BranchExists(ctx, owner, name, opts.BumpBranch)
	if err != nil {
		return "", err
	}
	if !exists {
		log.Infof("Creating branch %s from %s", opts.BumpBranch, opts.BaseBranch)
		if err := s.client.CreateBranch(ctx, owner, name, opts.BumpBranch, base.CommitSHA); err != nil {
			return "", err
		}
	}

	treeSHA, err := s.client.CreateTree(ctx, owner, name, base.TreeSHA, files)
	if err != nil {
		return "", err
	}

	commit, err := s.client.CreateCommit(ctx, owner, name, CommitMessage, treeSHA, []string{base.CommitSHA})
	if err != nil {
		return "", err
	}

	if err := s.client.UpdateBranch(ctx, owner, name, opts.BumpBranch, commit.SHA, true); err != nil {
		return "", err
	}

	log.With("sha", commit.SHA).Infof("Pushed commit to %s", opts.BumpBranch)
	return commit.SHA, nil
}

// upsertPullRequest edits the open bump PR if there is one, otherwise opens it.
func (s *BumpService) upsertPullRequest(ctx context.Context, opts Options, section changelog.Section) (*models.PullRequestInfo, bool, error) {
	log := clog.FromContext(ctx)
	owner, name := s.repo.GetOwner(), s.repo.GetName()

	existing, err := s.client.FindOpenPR(ctx, owner, name, opts.BumpBranch)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		log.Infof("Updating existing PR #%d", existing.Number)
		pr, err := s.client.EditPR(ctx, owner, name, existing.Number, section.Title, section.Body)
		if err != nil {
			return nil, false, err
		}
		if pr.User == "" {
			pr.User = existing.User
		}
		return pr, false, nil
	}

	log.Infof("Creating new PR with head %s and base %s", opts.BumpBranch, opts.BaseBranch)
	pr, err := s.client.CreatePR(ctx, owner, name, models.NewPullRequest{
		Title: section.Title,
		Body:  section.Body,
		Head:  opts.BumpBranch,
		Base:  opts.BaseBranch,
	})
	if err != nil {
		return nil, false, err
	}
	return pr, true, nil
}

// requestOwnerReviews asks the code owners to review pr. GitHub refuses review
// requests to the PR author, so the author and the current user are dropped.
func (s *BumpService) requestOwnerReviews(ctx context.Context, root string, pr *models.PullRequestInfo) ([]string, error) {
	log := clog.FromContext(ctx)

	owners, err := codeowners.Read(os.DirFS(root), codeowners.DefaultPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to read code owners: %w", err)
	}

	self, err := s.client.GetCurrentUserLogin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	reviewers := FilterReviewers(owners, self, pr.User)
	if len(reviewers) == 0 {
		log.Info("No code owners to request reviews from")
		return nil, nil
	}

	if err := s.client.RequestReviewers(ctx, s.repo.GetOwner(), s.repo.GetName(), pr.Number, reviewers); err != nil {
		return nil, err
	}
	log.Infof("Requested reviews from %s", strings.Join(reviewers, ", "))
	return reviewers, nil
}

// FilterReviewers drops empty names, bots and any of the excluded logins,
// preserving input order.
func FilterReviewers(candidates []string, excluded ...string) []string {
	reviewers := make([]string, 0, len(candidates))
	for _, login := range candidates {
		if isValidReviewer(login, excluded) {
			reviewers = append(reviewers, login)
		}
	}
	return reviewers
}

// isValidReviewer checks if user should be requested as a reviewer
func isValidReviewer(login string, excluded []string) bool {
	if login == "" || strings.HasSuffix(login, "[bot]") {
		return false
	}
	for _, e := range excluded {
		// GitHub logins are case-insensitive.
		if e != "" && strings.EqualFold(login, e) {
			return false
		}
	}
	return true
}
