// Package config loads the bump settings from the environment.
package config

import (
	"context"
	"fmt"

	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/ryo246912/gh-bump-pr/internal/tree"
	"github.com/sethvargo/go-envconfig"
)

// Config is populated from environment variables. GITHUB_TOKEN, REPO_NAME and
// BRANCH_NAME are the variables the release workflow exports.
type Config struct {
	Token            string   `env:"GITHUB_TOKEN,required"`
	Repo             string   `env:"REPO_NAME"`
	Branch           string   `env:"BRANCH_NAME,required"`
	Host             string   `env:"GH_HOST,default=github.com"`
	ChangelogPath    string   `env:"CHANGELOG_PATH,default=CHANGELOG.md"`
	BumpBranch       string   `env:"BUMP_BRANCH,default=bump-new-version"`
	TitlePrefix      string   `env:"PR_TITLE_PREFIX,default=Release v"`
	Excludes         []string `env:"EXCLUDE_PATTERNS"`
	AssignCodeOwners bool     `env:"ASSIGN_CODE_OWNERS,default=true"`
	LogLevel         string   `env:"LOG_LEVEL,default=info"`
}

// Load reads the configuration through l, or the process environment when l is nil.
func Load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	if l == nil {
		l = envconfig.OsLookuper()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := tree.ValidateExcludes(cfg.Excludes); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Repository resolves REPO_NAME, falling back to the repository of the
// current directory when it is unset.
func (c *Config) Repository() (repository.Repository, error) {
	if c.Repo == "" {
		repo, err := repository.Current()
		if err != nil {
			return repository.Repository{}, fmt.Errorf("REPO_NAME is unset and the current repository could not be resolved: %w", err)
		}
		return repo, nil
	}

	repo, err := repository.ParseWithHost(c.Repo, c.Host)
	if err != nil {
		return repository.Repository{}, fmt.Errorf("invalid REPO_NAME %q: %w", c.Repo, err)
	}
	return repo, nil
}
