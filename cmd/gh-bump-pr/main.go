package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/ryo246912/gh-bump-pr/internal/config"
	"github.com/ryo246912/gh-bump-pr/internal/github"
	"github.com/ryo246912/gh-bump-pr/internal/logger"
	"github.com/ryo246912/gh-bump-pr/internal/service"
	"github.com/ryo246912/gh-bump-pr/internal/ui"
	"github.com/spf13/cobra"
)

// RepositoryAdapter adapts repository.Repository to our interface
type RepositoryAdapter struct {
	repo *repository.Repository
}

func (r *RepositoryAdapter) GetOwner() string {
	return r.repo.Owner
}

func (r *RepositoryAdapter) GetName() string {
	return r.repo.Name
}

type flags struct {
	root        string
	dryRun      bool
	confirm     bool
	noReviewers bool
	excludes    []string
	changelog   string
	debug       bool
}

func runCommand(ctx context.Context, f flags) error {
	cfg, err := config.Load(ctx, nil)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if f.debug {
		level = slog.LevelDebug
	}
	ctx = logger.WithContext(ctx, logger.New(os.Stderr, level, os.Getenv("NO_COLOR") != ""))

	repo, err := cfg.Repository()
	if err != nil {
		return err
	}

	// Initialize GitHub client
	client, err := github.NewClient(api.ClientOptions{
		AuthToken: cfg.Token,
		Host:      repo.Host,
	})
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	changelogPath := cfg.ChangelogPath
	if f.changelog != "" {
		changelogPath = f.changelog
	}

	// Create service with dependency injection
	repoAdapter := &RepositoryAdapter{repo: &repo}
	prompter := &ui.DefaultPrompter{}
	bumpService := service.NewBumpService(client, repoAdapter, prompter)

	result, err := bumpService.Run(ctx, service.Options{
		Root:             f.root,
		ChangelogPath:    changelogPath,
		TitlePrefix:      cfg.TitlePrefix,
		BaseBranch:       cfg.Branch,
		BumpBranch:       cfg.BumpBranch,
		Excludes:         append(cfg.Excludes, f.excludes...),
		AssignCodeOwners: cfg.AssignCodeOwners && !f.noReviewers,
		DryRun:           f.dryRun,
		Confirm:          f.confirm,
		Out:              os.Stdout,
	})
	if errors.Is(err, service.ErrCancelled) {
		fmt.Println("Push cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	if result.DryRun {
		fmt.Printf("Dry run: %d files would be pushed to %s\n", result.Files, cfg.BumpBranch)
		return nil
	}

	if result.Created {
		fmt.Printf("Created pull request #%d: %s\n", result.PullRequest.Number, result.PullRequest.URL)
	} else {
		fmt.Printf("Updated pull request #%d: %s\n", result.PullRequest.Number, result.PullRequest.URL)
	}
	if len(result.Reviewers) > 0 {
		fmt.Printf("Requested reviews from %s\n", strings.Join(result.Reviewers, ", "))
	}
	return nil
}

func main() {
	var f flags
	cmd := &cobra.Command{
		Use:   "bump-pr",
		Short: "Push the version bump to a branch and open or update its pull request",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd.Context(), f)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&f.root, "root", ".", "repository working tree to collect files from")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the plan without calling the API")
	cmd.Flags().BoolVar(&f.confirm, "confirm", false, "ask before pushing")
	cmd.Flags().BoolVar(&f.noReviewers, "no-reviewers", false, "skip code owner review requests")
	cmd.Flags().StringSliceVar(&f.excludes, "exclude", nil, "extra glob to exclude, may be repeated")
	cmd.Flags().StringVar(&f.changelog, "changelog", "", "changelog path relative to --root")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "enable debug logging")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
